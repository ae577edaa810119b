package query

import (
	"fmt"

	"github.com/aretw0/provview/pkg/domain"
)

// SyntaxError reports malformed query text. Offset is the byte offset of the
// offending token.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Is makes errors.Is(err, domain.ErrSyntax) hold for every SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == domain.ErrSyntax
}

func syntaxErrorf(offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
