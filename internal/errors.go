package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by KV stores for missing keys and by lookups on unknown ids.
	ErrNotFound = errors.New("not found")
	// ErrTooManyImages is returned when a message or image session would exceed MaxImages.
	ErrTooManyImages = fmt.Errorf("at most %d images are allowed", MaxImages)
	// ErrEmptyPrompt is returned when a generation is requested without a prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrUnknownFeature is returned for history items whose feature cannot be restored.
	ErrUnknownFeature = errors.New("unknown feature")
)

// StorageError represents errors reading or writing the key-value store
type StorageError struct {
	Key string
	Op  string // "open", "get", "set", "delete", "keys"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding a persisted document
type ParseError struct {
	Source string // "history", "user", "theme", "config"
	Key    string // storage key or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ServiceError wraps a failed call to the generative service
type ServiceError struct {
	Op  string // "chat", "image", "edit-image", "code", "speech", "transcribe"
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error [%s]: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ValidationError lists form fields that failed validation
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
