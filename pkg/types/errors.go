package types

import (
	"errors"
	"fmt"
)

// Transfer errors. Every failure a copy or paste reports wraps one of
// these for errors.Is.
var (
	ErrTransferFailure    = errors.New("clipboard transfer failed")
	ErrEmptyClipboard     = errors.New("clipboard is empty")
	ErrMalformedPayload   = errors.New("malformed clipboard payload")
	ErrSchemaRejection    = errors.New("destination rejected subtree")
	ErrTransferInProgress = errors.New("another transfer is in progress")
)

// Document and placement errors.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidName     = errors.New("invalid name")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrInvalidKind     = errors.New("invalid block kind")
	ErrInvalidViewport = errors.New("viewport scale must be positive")
)

// Document store lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("document is already attached")
	ErrDetached        = errors.New("document is detached")
)

// TransferError reports a refused clipboard read or write.
type TransferError struct {
	Op  string // "read" or "write"
	Err error  // Error returned by the clipboard
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: clipboard %s: %v", ErrTransferFailure, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the clipboard's own error.
func (e *TransferError) Unwrap() []error { return []error{ErrTransferFailure, e.Err} }

// MalformedPayloadError reports clipboard text that is not a payload.
type MalformedPayloadError struct {
	Msg string // Deterministic description of what is wrong
	Err error  // Optional underlying decode error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedPayload, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedPayload, e.Msg)
}

func (e *MalformedPayloadError) Unwrap() error { return ErrMalformedPayload }

// SchemaRejectionError is returned by hosts that refuse a subtree. Kind
// and Field name the offending spot when the host knows it.
type SchemaRejectionError struct {
	Kind  string
	Field string
	Msg   string
}

func (e *SchemaRejectionError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s.%s: %s", ErrSchemaRejection, e.Kind, e.Field, e.Msg)
	case e.Kind != "":
		return fmt.Sprintf("%s: %s: %s", ErrSchemaRejection, e.Kind, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", ErrSchemaRejection, e.Msg)
	}
}

func (e *SchemaRejectionError) Unwrap() error { return ErrSchemaRejection }
