package dataset

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// Option configures Merge, Split and WriteManifest.
type Option func(*options)

type options struct {
	logger *zap.Logger
	rng    *rand.Rand
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger routes status messages to logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSeed makes the split shuffle reproducible. Without it every run
// partitions differently.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRand shuffles with r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

func (o *options) shuffle(n int, swap func(i, j int)) {
	if o.rng != nil {
		o.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
