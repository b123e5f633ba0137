package script

import (
	"errors"
	"fmt"
)

// syntaxError signals malformed delimiters or keyword structure.
type syntaxError struct{ msg string }

func (e syntaxError) Error() string { return "syntax: " + e.msg }

func errSyntax(format string, args ...any) error {
	return syntaxError{msg: fmt.Sprintf(format, args...)}
}

// IsSyntax reports whether err indicates malformed input.
func IsSyntax(err error) bool {
	var e syntaxError
	return errors.As(err, &e)
}

// subtypeNotFoundError signals an unknown category or property segment.
type subtypeNotFoundError struct{ msg string }

func (e subtypeNotFoundError) Error() string { return "subtype not found: " + e.msg }

func errSubtype(format string, args ...any) error {
	return subtypeNotFoundError{msg: fmt.Sprintf(format, args...)}
}

// IsSubtypeNotFound reports whether err indicates an unknown path segment.
func IsSubtypeNotFound(err error) bool {
	var e subtypeNotFoundError
	return errors.As(err, &e)
}

// operandNotFoundError signals a missing or type-invalid argument, index or value.
type operandNotFoundError struct{ msg string }

func (e operandNotFoundError) Error() string { return "operand not found: " + e.msg }

func errOperand(format string, args ...any) error {
	return operandNotFoundError{msg: fmt.Sprintf(format, args...)}
}

// IsOperandNotFound reports whether err indicates a bad operand.
func IsOperandNotFound(err error) bool {
	var e operandNotFoundError
	return errors.As(err, &e)
}

// notFoundError signals a reference to an undefined variable.
type notFoundError struct{ ident string }

func (e notFoundError) Error() string { return "not found: " + e.ident }

// IsNotFound reports whether err references an undefined variable.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}
