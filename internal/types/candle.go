package types

import "time"

// Asset identifies a tradable commodity. The dashboard only offers a fixed
// set of markets, so the engine treats anything else as a validation error.
type Asset string

const (
	AssetGold       Asset = "GOLD"
	AssetSilver     Asset = "SILVER"
	AssetCrudeOil   Asset = "CRUDE_OIL"
	AssetNaturalGas Asset = "NATURAL_GAS"
	AssetWheat      Asset = "WHEAT"
	AssetCorn       Asset = "CORN"
	AssetCopper     Asset = "COPPER"
	AssetCoffee     Asset = "COFFEE"
)

// AllAssets returns every tradable asset known to the engine.
func AllAssets() []Asset {
	return []Asset{
		AssetGold,
		AssetSilver,
		AssetCrudeOil,
		AssetNaturalGas,
		AssetWheat,
		AssetCorn,
		AssetCopper,
		AssetCoffee,
	}
}

// IsValid reports whether the asset is one of the supported commodities.
func (a Asset) IsValid() bool {
	for _, asset := range AllAssets() {
		if a == asset {
			return true
		}
	}

	return false
}

// AuxFXRate is the auxiliary column name carrying the USD FX rate of the
// asset's quote currency, when the market data provider supplies one.
const AuxFXRate = "fx_rate"

// Candle is one OHLCV sample for a fixed trading interval, ordered by time.
// Candles are created by the market data provider and passed into the engine
// as immutable inputs; the engine never mutates them.
type Candle struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Asset  Asset     `yaml:"asset" json:"asset" csv:"asset"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
	// Aux carries optional named overlay values aligned to this candle,
	// e.g. an FX rate. Nil when the provider supplies none.
	Aux map[string]float64 `yaml:"aux,omitempty" json:"aux,omitempty" csv:"-"`
}

// AuxValue returns the named auxiliary value and whether it is present.
func (c Candle) AuxValue(key string) (float64, bool) {
	if c.Aux == nil {
		return 0, false
	}

	value, ok := c.Aux[key]

	return value, ok
}

// DateRange describes the first and last candle time available for an asset.
type DateRange struct {
	Min time.Time `yaml:"min" json:"min"`
	Max time.Time `yaml:"max" json:"max"`
}
