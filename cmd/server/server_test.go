package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantvis/strata/internal/history"
	"github.com/quantvis/strata/internal/indicator"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/marketdata"
	"github.com/quantvis/strata/internal/store"
	"github.com/quantvis/strata/internal/types"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	server     *Server
	strategies *store.DuckDBStore
	runs       *history.DuckDBStore
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	log := logger.NewNopLogger()

	strategies, err := store.NewDuckDBStore("", log)
	suite.Require().NoError(err)
	suite.strategies = strategies

	runs, err := history.NewDuckDBStore("", log)
	suite.Require().NoError(err)
	suite.runs = runs

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, 10)

	for i := range candles {
		price := float64(i + 1)
		candles[i] = types.Candle{
			Time:   start.AddDate(0, 0, i),
			Asset:  types.AssetGold,
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		}
	}

	provider := marketdata.NewMemoryProvider(map[types.Asset][]types.Candle{
		types.AssetGold: candles,
	})

	suite.server = NewServer(provider, indicator.NewDefaultRegistry(), nil, strategies, runs, log)
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.strategies.Close()
	suite.runs.Close()
}

func (suite *ServerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	suite.server.Router().ServeHTTP(recorder, request)

	return recorder
}

func (suite *ServerTestSuite) strategyDocument(id string) map[string]any {
	return map[string]any{
		"id":        id,
		"name":      "momentum",
		"asset":     "GOLD",
		"direction": "LONG",
		"entry": map[string]any{
			"type":     "group",
			"operator": "and",
			"children": []any{
				map[string]any{
					"type":       "condition",
					"left":       map[string]any{"kind": "close"},
					"comparator": "crosses_above",
					"threshold":  2.0,
				},
			},
		},
		"exit": map[string]any{
			"type":     "group",
			"operator": "and",
			"children": []any{
				map[string]any{
					"type":       "condition",
					"left":       map[string]any{"kind": "close"},
					"comparator": "gt",
					"threshold":  7.0,
				},
			},
		},
		"stop_loss_pct":   0.5,
		"take_profit_pct": 10.0,
	}
}

func (suite *ServerTestSuite) TestStrategyCRUD() {
	created := suite.request(http.MethodPost, "/api/v1/strategies", suite.strategyDocument("s-1"))
	suite.Equal(http.StatusCreated, created.Code)

	listed := suite.request(http.MethodGet, "/api/v1/strategies", nil)
	suite.Equal(http.StatusOK, listed.Code)

	var strategies []types.VisualStrategy
	suite.Require().NoError(json.Unmarshal(listed.Body.Bytes(), &strategies))
	suite.Len(strategies, 1)

	got := suite.request(http.MethodGet, "/api/v1/strategies/s-1", nil)
	suite.Equal(http.StatusOK, got.Code)

	deleted := suite.request(http.MethodDelete, "/api/v1/strategies/s-1", nil)
	suite.Equal(http.StatusNoContent, deleted.Code)

	missing := suite.request(http.MethodGet, "/api/v1/strategies/s-1", nil)
	suite.Equal(http.StatusNotFound, missing.Code)
}

func (suite *ServerTestSuite) TestSaveRejectsInvalidStrategy() {
	document := suite.strategyDocument("s-1")
	document["stop_loss_pct"] = 0

	response := suite.request(http.MethodPost, "/api/v1/strategies", document)
	suite.Equal(http.StatusBadRequest, response.Code)
}

func (suite *ServerTestSuite) TestRunBacktest() {
	response := suite.request(http.MethodPost, "/api/v1/backtest", map[string]any{
		"strategy": suite.strategyDocument("s-1"),
		"config":   map[string]any{"initial_capital": 10000},
	})
	suite.Require().Equal(http.StatusOK, response.Code, response.Body.String())

	var result types.BacktestResult
	suite.Require().NoError(json.Unmarshal(response.Body.Bytes(), &result))

	suite.NotEmpty(result.ID)
	suite.Len(result.Trades, 1)
	suite.Equal(types.CloseReasonExitRule, result.Trades[0].CloseReason)
	suite.Len(result.EquityCurve, 10)
	suite.Len(result.Candles, 10)
}

func (suite *ServerTestSuite) TestRunBacktestUnknownAsset() {
	document := suite.strategyDocument("s-1")
	document["asset"] = "TULIPS"

	response := suite.request(http.MethodPost, "/api/v1/backtest", map[string]any{
		"strategy": document,
	})
	suite.Equal(http.StatusBadRequest, response.Code)
}

func (suite *ServerTestSuite) TestSchema() {
	response := suite.request(http.MethodGet, "/api/v1/strategies/schema", nil)
	suite.Equal(http.StatusOK, response.Code)
	suite.Contains(response.Body.String(), "stop_loss_pct")
}

func (suite *ServerTestSuite) TestAssets() {
	response := suite.request(http.MethodGet, "/api/v1/assets", nil)
	suite.Equal(http.StatusOK, response.Code)

	var assets []types.Asset
	suite.Require().NoError(json.Unmarshal(response.Body.Bytes(), &assets))
	suite.Contains(assets, types.AssetGold)

	rangeResponse := suite.request(http.MethodGet, "/api/v1/assets/GOLD/range", nil)
	suite.Equal(http.StatusOK, rangeResponse.Code)

	var dateRange types.DateRange
	suite.Require().NoError(json.Unmarshal(rangeResponse.Body.Bytes(), &dateRange))
	suite.Equal(2024, dateRange.Min.Year())

	unknown := suite.request(http.MethodGet, "/api/v1/assets/TULIPS/range", nil)
	suite.Equal(http.StatusBadRequest, unknown.Code)
}

func (suite *ServerTestSuite) TestGetMissingRun() {
	response := suite.request(http.MethodGet, "/api/v1/runs/ghost", nil)
	suite.Equal(http.StatusNotFound, response.Code)
}
