package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidTakeProfit    ErrorCode = 102
	ErrCodeInvalidStopLoss      ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeInvalidComparator    ErrorCode = 105
	ErrCodeInvalidCondition     ErrorCode = 106
	ErrCodeInvalidDirection     ErrorCode = 107
	ErrCodeMissingParameter     ErrorCode = 108
	ErrCodeUnknownIndicator     ErrorCode = 109

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeEmptySeries           ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302
	ErrCodeUnknownCalendarEvent   ErrorCode = 303

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound    ErrorCode = 400
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeStrategyParseError  ErrorCode = 402

	// Backtest errors (600-699)
	ErrCodeBacktestCancelled    ErrorCode = 600
	ErrCodeBacktestConfigError  ErrorCode = 601
	ErrCodeBacktestNoDatasource ErrorCode = 602

	// History errors (700-799)
	ErrCodeHistoryWriteFailed ErrorCode = 700
	ErrCodeHistoryReadFailed  ErrorCode = 701
)
