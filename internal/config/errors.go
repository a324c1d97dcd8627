package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when neither email files nor raw text are provided.
	ErrNoInput = errors.New("no input specified: provide an email file or use --text")

	// ErrConflictingInputs is returned when both files and --text are given.
	// The analysis source would be ambiguous.
	ErrConflictingInputs = errors.New("conflicting inputs: file arguments and --text cannot be used together")

	// ErrInvalidThreshold is returned when the classification threshold is
	// outside [0,1]. Probabilities can never cross such a threshold meaningfully.
	ErrInvalidThreshold = errors.New("invalid threshold: must be between 0 and 1")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent analyses, effectively
	// stopping processing.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxUploadSize is returned when the max upload size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxUploadSize = errors.New("invalid max upload size: must be non-negative")

	// ErrNoListenAddress is returned when the API server is started without
	// a listen address.
	ErrNoListenAddress = errors.New("no listen address specified")
)
