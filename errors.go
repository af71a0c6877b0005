package gatito

import (
	"fmt"

	"github.com/ZaguanLabs/gatito/validate"
)

// ErrorCode classifies a ValidationError.
type ErrorCode string

const (
	CodeInvalidURL          ErrorCode = "invalid_url"
	CodeInvalidCurrency     ErrorCode = "invalid_currency"
	CodeInvalidAvailability ErrorCode = "invalid_availability"
	CodeInvalidRating       ErrorCode = "invalid_rating"
	CodeInvalidReviewCount  ErrorCode = "invalid_review_count"
	CodeMissingField        ErrorCode = "missing_field"
	CodeInvalidPrice        ErrorCode = "invalid_price"
	CodeInvalidPhone        ErrorCode = "invalid_phone"
	CodeInvalidQuantity     ErrorCode = "invalid_quantity"
)

// Sentinels for errors.Is. A ValidationError matches the sentinel with the same code.
var (
	ErrInvalidURL          = &ValidationError{Code: CodeInvalidURL}
	ErrInvalidCurrency     = &ValidationError{Code: CodeInvalidCurrency}
	ErrInvalidAvailability = &ValidationError{Code: CodeInvalidAvailability}
	ErrInvalidRating       = &ValidationError{Code: CodeInvalidRating}
	ErrInvalidReviewCount  = &ValidationError{Code: CodeInvalidReviewCount}
	ErrMissingField        = &ValidationError{Code: CodeMissingField}
	ErrInvalidPrice        = &ValidationError{Code: CodeInvalidPrice}
	ErrInvalidPhone        = &ValidationError{Code: CodeInvalidPhone}
	ErrInvalidQuantity     = &ValidationError{Code: CodeInvalidQuantity}
)

// ValidationError reports a field that failed its constraints.
// Values are never mutated after construction.
type ValidationError struct {
	Code        ErrorCode
	Field       string         // Field path, e.g. "offers.priceCurrency"
	Value       string         // The offending input
	Message     string         // Human-readable summary
	Details     map[string]any // Constraints the value was checked against
	Suggestions []string       // Hints for correcting the input
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is matches another *ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// NewInvalidURLError reports a URL that failed validate.URL.
func NewInvalidURLError(field, value string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidURL,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("invalid URL %q", value),
		Details: map[string]any{"schemes": []string{"http", "https"}},
		Suggestions: []string{
			"Use an absolute URL starting with https://",
			"Check the domain for empty labels or stray hyphens",
			"Avoid double slashes in the path or query",
		},
	}
}

// NewInvalidCurrencyError reports a code outside the ISO 4217 allow-list.
func NewInvalidCurrencyError(field, value string) *ValidationError {
	return &ValidationError{
		Code:        CodeInvalidCurrency,
		Field:       field,
		Value:       value,
		Message:     fmt.Sprintf("invalid currency code %q", value),
		Details:     map[string]any{"allowed": validate.Currencies()},
		Suggestions: []string{"Use an upper-case ISO 4217 code such as USD or EUR"},
	}
}

// NewInvalidAvailabilityError reports an unknown availability state.
func NewInvalidAvailabilityError(field, value string) *ValidationError {
	return &ValidationError{
		Code:        CodeInvalidAvailability,
		Field:       field,
		Value:       value,
		Message:     fmt.Sprintf("invalid availability %q", value),
		Details:     map[string]any{"allowed": validate.AvailabilityStates()},
		Suggestions: []string{"Use the full schema.org URL, e.g. " + validate.InStock},
	}
}

// NewInvalidRatingError reports a rating outside 0-5 or off the quarter-point grid.
func NewInvalidRatingError(field, value string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidRating,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("invalid rating %q", value),
		Details: map[string]any{
			"min":       0,
			"max":       validate.MaxRating,
			"fractions": validate.RatingFractions(),
		},
		Suggestions: []string{"Use a value between 0 and 5 in steps of 0.25, e.g. 4.5"},
	}
}

// NewInvalidReviewCountError reports a malformed review count.
func NewInvalidReviewCountError(field, value string) *ValidationError {
	return &ValidationError{
		Code:        CodeInvalidReviewCount,
		Field:       field,
		Value:       value,
		Message:     fmt.Sprintf("invalid review count %q", value),
		Details:     map[string]any{"maxDigits": validate.MaxReviewCountDigits},
		Suggestions: []string{"Use a whole number without sign or leading zeros"},
	}
}

// NewMissingFieldError reports an empty required field.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Code:        CodeMissingField,
		Field:       field,
		Message:     "required field is missing",
		Suggestions: []string{fmt.Sprintf("Set %s in the site configuration", field)},
	}
}

// NewInvalidPriceError reports a price that is not a non-negative decimal.
func NewInvalidPriceError(field, value string) *ValidationError {
	return &ValidationError{
		Code:        CodeInvalidPrice,
		Field:       field,
		Value:       value,
		Message:     fmt.Sprintf("invalid price %q", value),
		Suggestions: []string{"Use a plain decimal with a dot separator, e.g. 12.50"},
	}
}

// ProcessorError indicates a page processing failure (parse error, etc.).
type ProcessorError struct {
	Message string
	Cause   error
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error: %s", e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// SinkError indicates an analytics delivery failure.
type SinkError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the delivery can be retried
}

func (e *SinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sink error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("sink error: %s", e.Message)
}

func (e *SinkError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates an invalid site configuration.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
