package codec

import (
	"errors"
	"fmt"
)

// CodecError represents a failed encode or decode. These are local-fault
// errors: they are surfaced to the caller immediately and never retried.
type CodecError struct {
	// Code identifies the error category.
	Code CodecErrorCode

	// Message is a human-readable description.
	Message string
}

// CodecErrorCode categorizes codec errors.
type CodecErrorCode string

const (
	// ErrCodeMalformed indicates input text that does not decode to a
	// well-formed reference (bad checksum, wrong payload length, bad hex).
	ErrCodeMalformed CodecErrorCode = "MALFORMED_IDENTIFIER"

	// ErrCodeUnknownKind indicates an unrecognized identifier prefix.
	ErrCodeUnknownKind CodecErrorCode = "UNKNOWN_IDENTIFIER_KIND"

	// ErrCodePayloadTooLarge indicates a packed naddr TLV payload over the
	// hard size ceiling. The caller must shrink relay hint lists.
	ErrCodePayloadTooLarge CodecErrorCode = "PAYLOAD_TOO_LARGE"

	// ErrCodePrivateKeyRefused indicates an nsec identifier. Private key
	// material is never accepted by this layer.
	ErrCodePrivateKeyRefused CodecErrorCode = "PRIVATE_KEY_REFUSED"
)

// Error implements the error interface.
func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMalformed returns true if the error is a malformed-identifier error.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce) && ce.Code == ErrCodeMalformed
}

// IsUnknownKind returns true if the error is an unknown-prefix error.
func IsUnknownKind(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce) && ce.Code == ErrCodeUnknownKind
}

// IsPayloadTooLarge returns true if the error is a size-ceiling error.
func IsPayloadTooLarge(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce) && ce.Code == ErrCodePayloadTooLarge
}

// IsPrivateKeyRefused returns true if the error is an nsec refusal.
func IsPrivateKeyRefused(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce) && ce.Code == ErrCodePrivateKeyRefused
}

func malformed(format string, args ...any) *CodecError {
	return &CodecError{Code: ErrCodeMalformed, Message: fmt.Sprintf(format, args...)}
}

func unknownKind(prefix string) *CodecError {
	return &CodecError{Code: ErrCodeUnknownKind, Message: fmt.Sprintf("unrecognized identifier prefix %q", prefix)}
}

func payloadTooLarge(size int) *CodecError {
	return &CodecError{
		Code:    ErrCodePayloadTooLarge,
		Message: fmt.Sprintf("packed TLV payload is %d bytes, ceiling is %d; drop relay hints", size, MaxTLVSize),
	}
}
