package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Odds and fee calculation error codes
const (
	CodeInvalidProbability Code = "INVALID_PROBABILITY"
	CodeInvalidOdds        Code = "INVALID_ODDS"
	CodeUnprofitableOrder  Code = "UNPROFITABLE_ORDER"
	CodeNonPositiveProfit  Code = "NON_POSITIVE_PROFIT"
	CodeInvalidPrice       Code = "INVALID_PRICE"
	CodeInvalidQuantity    Code = "INVALID_QUANTITY"
	CodeInvalidFee         Code = "INVALID_FEE"
)

// Ticket parsing error codes
const (
	CodeFieldNotFound   Code = "FIELD_NOT_FOUND"
	CodeValueOutOfRange Code = "VALUE_OUT_OF_RANGE"
	CodeTicketNotFound  Code = "TICKET_NOT_FOUND"
	CodeTicketDetached  Code = "TICKET_DETACHED"
	CodeParseIncomplete Code = "PARSE_INCOMPLETE"
	CodeFeeInconsistent Code = "FEE_INCONSISTENT"
)

// Lifecycle and transport error codes
const (
	CodeDetectionTimeout     Code = "DETECTION_TIMEOUT"
	CodeDetectionSuspended   Code = "DETECTION_SUSPENDED"
	CodeStaleResult          Code = "STALE_RESULT"
	CodeSnapshotDecodeFailed Code = "SNAPSHOT_DECODE_FAILED"
	CodeBridgeClosed         Code = "BRIDGE_CLOSED"
)
