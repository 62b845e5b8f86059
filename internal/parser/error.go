package parser

import (
	"fmt"

	"github.com/go-stc/stc/internal/lexer"
)

// Error is a structured parse error with position information.
type Error struct {
	Message string
	Code    string
	Pos     lexer.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

func newError(pos lexer.Position, code, message string) *Error {
	return &Error{Message: message, Code: code, Pos: pos}
}

const (
	ErrUnexpectedToken = "E_UNEXPECTED_TOKEN"
	ErrExpectedIdent   = "E_EXPECTED_IDENT"
	ErrExpectedType    = "E_EXPECTED_TYPE"
	ErrNoPrefixParse   = "E_NO_PREFIX_PARSE"
	ErrInvalidSyntax   = "E_INVALID_SYNTAX"
)
