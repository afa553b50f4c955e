package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeTimeout represents a results table that never rendered
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeExtraction represents a single row that could not be parsed
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeStorage represents known-ids store errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNotification represents chat notification errors
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlerError represents a worker error scoped to a search link
type CrawlerError struct {
	Type    ErrorType
	Link    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Link, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Link, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// IsType reports whether err wraps a CrawlerError of the given type
func IsType(err error, errType ErrorType) bool {
	var ce *CrawlerError
	if stderrors.As(err, &ce) {
		return ce.Type == errType
	}
	return false
}

// New creates a new CrawlerError
func New(errType ErrorType, link, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:    errType,
		Link:    link,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(link, message string, err error) *CrawlerError {
	return New(ErrorTypeNetwork, link, message, err)
}

// NewTimeout creates a new results-table timeout error
func NewTimeout(link string, wait time.Duration, err error) *CrawlerError {
	message := fmt.Sprintf("car list table did not load within %v", wait)
	return New(ErrorTypeTimeout, link, message, err)
}

// NewExtraction creates a new row extraction error
func NewExtraction(link, message string, err error) *CrawlerError {
	return New(ErrorTypeExtraction, link, message, err)
}

// NewStorage creates a new storage error
func NewStorage(link, message string, err error) *CrawlerError {
	return New(ErrorTypeStorage, link, message, err)
}

// NewNotification creates a new notification error
func NewNotification(link, message string, err error) *CrawlerError {
	return New(ErrorTypeNotification, link, message, err)
}

// NewCache creates a new cache error
func NewCache(link, message string, err error) *CrawlerError {
	return New(ErrorTypeCache, link, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(link, message string, err error) *CrawlerError {
	return New(ErrorTypePublisher, link, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "", message, err)
}
