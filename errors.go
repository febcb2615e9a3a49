package gocas

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is returned when simplification meets x/0 or 0^-n.
	ErrDivisionByZero = errors.New("gocas: division by zero")

	// ErrUnsupportedDifferentiation is returned for a node with no
	// differentiation rule, such as a deferred integrate[...] marker.
	ErrUnsupportedDifferentiation = errors.New("gocas: no differentiation rule")

	// ErrMalformedExpression is returned for text or JSON that does not
	// describe a well-formed tree.
	ErrMalformedExpression = errors.New("gocas: malformed expression")

	// ErrTooDeep is returned for trees deeper than MaxDepth.
	ErrTooDeep = errors.New("gocas: expression too deep")
)

// UnsupportedDiffError names the node that had no differentiation rule.
type UnsupportedDiffError struct {
	Kind Kind
	Expr Expr
}

func (e *UnsupportedDiffError) Error() string {
	if e.Expr == nil {
		return fmt.Sprintf("gocas: no rule to differentiate %s node", e.Kind)
	}
	return fmt.Sprintf("gocas: no rule to differentiate %s node %s", e.Kind, String(e.Expr))
}

func (e *UnsupportedDiffError) Is(target error) bool {
	return target == ErrUnsupportedDifferentiation
}

// ParseError reports a syntax error at a byte offset of the input.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gocas: parse error at offset %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedExpression
}
