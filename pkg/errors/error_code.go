package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidSignal        ErrorCode = 103
	ErrCodeInvalidQuantity      ErrorCode = 104

	// Data errors (200-299)
	ErrCodeDataNotFound       ErrorCode = 200
	ErrCodeDataSourceFailed   ErrorCode = 201
	ErrCodeDataNotChronologic ErrorCode = 202

	// Strategy errors (300-399)
	ErrCodeStrategyFailed ErrorCode = 300

	// Broker errors (400-499)
	ErrCodeBrokerUnavailable ErrorCode = 400
	ErrCodeBrokerInternal    ErrorCode = 401

	// Engine errors (500-599)
	ErrCodeEngineNotInitialized ErrorCode = 500
	ErrCodeEngineSnapshotFailed ErrorCode = 501
)
