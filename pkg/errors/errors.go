package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents a page that could not be retrieved after retries
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeUnsupportedDomain represents a host no adapter is registered for
	ErrorTypeUnsupportedDomain ErrorType = "unsupported_domain"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeExport represents export-related errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents an error raised while scraping a marketplace page
type ScrapeError struct {
	Type        ErrorType
	Marketplace string
	Message     string
	Err         error
	Time        time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Marketplace, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Marketplace, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the caller may retry the operation.
// Fetch failures already went through the session's bounded retries.
func (e *ScrapeError) IsRetryable() bool {
	return false
}

// New creates a new ScrapeError
func New(errType ErrorType, marketplace, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:        errType,
		Marketplace: marketplace,
		Message:     message,
		Err:         err,
		Time:        time.Now(),
	}
}

// NewFetch creates a new fetch failure
func NewFetch(marketplace, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, marketplace, message, err)
}

// NewUnsupportedDomain creates a new unsupported domain error
func NewUnsupportedDomain(host string) *ScrapeError {
	return New(ErrorTypeUnsupportedDomain, "", fmt.Sprintf("domain is not supported: %s", host), nil)
}

// NewParsing creates a new parsing error
func NewParsing(marketplace, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, marketplace, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(marketplace, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, marketplace, message, err)
}

// NewExport creates a new export error
func NewExport(message string, err error) *ScrapeError {
	return New(ErrorTypeExport, "", message, err)
}

// NewValidation creates a new validation error
func NewValidation(marketplace, message string) *ScrapeError {
	return New(ErrorTypeValidation, marketplace, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err wraps a ScrapeError of the given type
func IsType(err error, errType ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// IsFetchFailure reports whether err is a fetch failure
func IsFetchFailure(err error) bool {
	return IsType(err, ErrorTypeFetch)
}

// IsUnsupportedDomain reports whether err is an unsupported domain error
func IsUnsupportedDomain(err error) bool {
	return IsType(err, ErrorTypeUnsupportedDomain)
}
