package parser

import "errors"

// ErrorKind classifies a rejected command.
type ErrorKind int

const (
	ErrUnknownCommand ErrorKind = iota + 1
	ErrEmptyDescription
	ErrInvalidDescription
	ErrMissingSeparator
	ErrMissingNumber
	ErrInvalidNumber
	ErrOutOfBounds
	ErrMissingKeyword
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownCommand:
		return "unknown command"
	case ErrEmptyDescription:
		return "empty description"
	case ErrInvalidDescription:
		return "invalid description"
	case ErrMissingSeparator:
		return "missing separator"
	case ErrMissingNumber:
		return "missing task number"
	case ErrInvalidNumber:
		return "invalid number"
	case ErrOutOfBounds:
		return "out of bounds"
	case ErrMissingKeyword:
		return "missing keyword"
	default:
		return "unknown error"
	}
}

// UserInputError is a recoverable problem with what the user typed.
// Message is the text shown back to the user.
type UserInputError struct {
	Kind    ErrorKind
	Message string
}

func newError(kind ErrorKind, msg string) *UserInputError {
	return &UserInputError{Kind: kind, Message: msg}
}

func (e *UserInputError) Error() string {
	return e.Message
}

// Is matches another *UserInputError of the same Kind, so callers can write
// errors.Is(err, &UserInputError{Kind: ErrOutOfBounds}).
func (e *UserInputError) Is(target error) bool {
	t, ok := target.(*UserInputError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the ErrorKind of err, or 0 when err is not a *UserInputError.
func KindOf(err error) ErrorKind {
	var e *UserInputError
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
