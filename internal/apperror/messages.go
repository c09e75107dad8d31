package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Odds and fee calculation
	CodeInvalidProbability: "Probability must be strictly between 0 and 1",
	CodeInvalidOdds:        "American odds must be a finite integer with magnitude >= 100",
	CodeUnprofitableOrder:  "Price plus fee meets or exceeds 1.00, order cannot profit",
	CodeNonPositiveProfit:  "Computed profit is not positive",
	CodeInvalidPrice:       "Contract price must be between 0.01 and 1.00",
	CodeInvalidQuantity:    "Quantity must be an integer between 1 and 10000",
	CodeInvalidFee:         "Fee must be between 0 and 1000 with at most 4 decimal places",

	// Ticket parsing
	CodeFieldNotFound:   "Field could not be located in the ticket",
	CodeValueOutOfRange: "Parsed value is outside its valid range",
	CodeTicketNotFound:  "Order ticket element not found",
	CodeTicketDetached:  "Ticket element was detached while parsing",
	CodeParseIncomplete: "Parse did not yield a usable ticket",
	CodeFeeInconsistent: "Total fee disagrees with per-contract fee times quantity",

	// Lifecycle and transport
	CodeDetectionTimeout:     "Ticket detection exhausted its retries",
	CodeDetectionSuspended:   "Ticket detection suspended by circuit breaker",
	CodeStaleResult:          "Parse result arrived after the ticket closed",
	CodeSnapshotDecodeFailed: "Snapshot frame could not be decoded",
	CodeBridgeClosed:         "Snapshot bridge connection closed",
}
