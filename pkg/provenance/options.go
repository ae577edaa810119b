package provenance

import (
	"log/slog"

	"github.com/aretw0/provview/internal/logging"
	"github.com/aretw0/provview/pkg/domain"
)

// Option configures a build.
type Option func(*builder)

// WithLogger sets the logger for the build.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithHooks registers lifecycle observers. Multiple calls are merged in order.
func WithHooks(hooks domain.Hooks) Option {
	return func(b *builder) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

func defaultBuilder() *builder {
	return &builder{
		logger: logging.NewNop(),
	}
}
