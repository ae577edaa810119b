package archive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/provview/pkg/domain"
)

// LayoutError lists every problem found while validating a container.
// It matches domain.ErrInvalidArchive.
type LayoutError struct {
	Source   string
	Problems []string
}

func (e *LayoutError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s: %s", e.Source, domain.ErrInvalidArchive, e.Problems[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %d problems:\n", e.Source, domain.ErrInvalidArchive, len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return b.String()
}

func (e *LayoutError) Unwrap() error { return domain.ErrInvalidArchive }

// Problems returns the layout problems if err is a LayoutError.
// Otherwise returns nil.
func Problems(err error) []string {
	var layout *LayoutError
	if errors.As(err, &layout) {
		return layout.Problems
	}
	return nil
}
