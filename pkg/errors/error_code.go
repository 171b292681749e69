package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfig  ErrorCode = 100
	ErrCodeNoEntryLine    ErrorCode = 101
	ErrCodeInvalidLine    ErrorCode = 102
	ErrCodeNotConfigured  ErrorCode = 103
	ErrCodeInvalidSymbol  ErrorCode = 104
	ErrCodeInvalidSizing  ErrorCode = 105
	ErrCodeInvalidStopOut ErrorCode = 106

	// Data errors (200-299)
	ErrCodeInvalidPrice        ErrorCode = 200
	ErrCodeMalformedAnchors    ErrorCode = 201
	ErrCodeNonFiniteProjection ErrorCode = 202
	ErrCodePriceOutOfRange     ErrorCode = 203
	ErrCodeInvalidTick         ErrorCode = 204

	// State errors (300-399)
	ErrCodeInvalidState   ErrorCode = 300
	ErrCodeNotRunning     ErrorCode = 301
	ErrCodeAlreadyRunning ErrorCode = 302
	ErrCodeBotNotFound    ErrorCode = 303
	ErrCodeNotReconfigured ErrorCode = 304

	// Line/ladder errors (400-499)
	ErrCodeLineUpdateFailed ErrorCode = 400
	ErrCodeAllocationFailed ErrorCode = 401
	ErrCodeNoLinesAssigned  ErrorCode = 402

	// Execution errors (500-599)
	ErrCodeOrderRejected ErrorCode = 500
	ErrCodeOrderNotFound ErrorCode = 501
	ErrCodeAmendFailed   ErrorCode = 502
	ErrCodeCancelFailed  ErrorCode = 503
	ErrCodeNoMarketPrice ErrorCode = 504
	ErrCodeInvalidOrder  ErrorCode = 505

	// Tick feed errors (700-799)
	ErrCodeFeedConnectFailed ErrorCode = 700
	ErrCodeFeedParseFailed   ErrorCode = 701
	ErrCodeFeedClosed        ErrorCode = 702
	ErrCodeInvalidFeedConfig ErrorCode = 703

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
