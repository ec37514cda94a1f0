package claim

import "time"

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithDraw sets the random draw function. The function must return a
// uniform int in [0, n) and be safe for concurrent use.
func WithDraw(draw func(n int) int) Option {
	return func(p *Processor) {
		if draw != nil {
			p.draw = draw
		}
	}
}

// WithClock sets the timestamp source for award events.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}
