package version

import (
	"errors"
	"fmt"
)

// Kind classifies a parse failure.
type Kind int

const (
	KindInvalidFormat Kind = iota + 1
	KindComponentOverflow
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindComponentOverflow:
		return "ComponentOverflow"
	case KindEmpty:
		return "Empty"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels for errors.Is matching against a *ParseError.
var (
	ErrInvalidFormat     = errors.New("invalid range format")
	ErrComponentOverflow = errors.New("numeric component out of range")
	ErrEmpty             = errors.New("empty range")
)

// ParseError reports a range string that could not be parsed.
type ParseError struct {
	Kind   Kind
	Input  string
	Detail string
	Err    error // underlying cause, e.g. a *strconv.NumError
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("version: parse %q: %s", e.Input, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrInvalidFormat:
		return e.Kind == KindInvalidFormat
	case ErrComponentOverflow:
		return e.Kind == KindComponentOverflow
	case ErrEmpty:
		return e.Kind == KindEmpty
	}
	return false
}

func invalid(input, detail string) *ParseError {
	return &ParseError{Kind: KindInvalidFormat, Input: input, Detail: detail}
}
