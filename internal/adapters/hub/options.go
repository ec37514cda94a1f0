package hub

import "github.com/okian/tally/pkg/logger"

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithBufferSize sets the per-subscriber snapshot buffer depth.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}
