package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for structured error handling.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeWrongKeyOrCorrupt = "WRONG_KEY_OR_CORRUPT"
	ErrCodeIO                = "IO_FAILURE"
	ErrCodeVaultExists       = "VAULT_EXISTS"
	ErrCodeVaultMissing      = "VAULT_MISSING"
	ErrCodeUnknown           = "UNKNOWN"
)

// Sentinel errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrWrongKeyOrCorrupt = errors.New("incorrect key or corrupt vault")
	ErrIO                = errors.New("vault storage failure")
	ErrVaultExists       = errors.New("vault already exists")
	ErrVaultMissing      = errors.New("vault does not exist")

	// ErrInvalidDocument is the cause behind ErrWrongKeyOrCorrupt when the
	// plaintext decrypted but is not a vault document.
	ErrInvalidDocument = errors.New("invalid vault document")
)

// VaultError describes a failed vault operation. It matches both its Kind
// and its underlying cause with errors.Is.
type VaultError struct {
	Op       string
	Kind     error
	Platform string
	Account  string
	Err      error
}

func (e *VaultError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Platform != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Platform)
		if e.Account != "" {
			sb.WriteString("/")
			sb.WriteString(e.Account)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Err != nil && e.Err != e.Kind {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *VaultError) Unwrap() []error {
	if e.Err == nil || e.Err == e.Kind {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code returns the stable code of the error kind.
func (e *VaultError) Code() string {
	return codeOf(e.Kind)
}

// NewError builds a VaultError.
func NewError(op string, kind, cause error) *VaultError {
	return &VaultError{Op: op, Kind: kind, Err: cause}
}

// Errorf builds a VaultError whose cause is a formatted message.
func Errorf(op string, kind error, format string, args ...interface{}) *VaultError {
	return &VaultError{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ErrorCode maps any error to its code, UNKNOWN when it carries no kind.
func ErrorCode(err error) string {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Code()
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return codeOf(kind)
		}
	}
	return ErrCodeUnknown
}

var kinds = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrWrongKeyOrCorrupt,
	ErrIO,
	ErrVaultExists,
	ErrVaultMissing,
}

func codeOf(kind error) string {
	switch kind {
	case ErrInvalidInput:
		return ErrCodeInvalidInput
	case ErrNotFound:
		return ErrCodeNotFound
	case ErrWrongKeyOrCorrupt:
		return ErrCodeWrongKeyOrCorrupt
	case ErrIO:
		return ErrCodeIO
	case ErrVaultExists:
		return ErrCodeVaultExists
	case ErrVaultMissing:
		return ErrCodeVaultMissing
	default:
		return ErrCodeUnknown
	}
}
