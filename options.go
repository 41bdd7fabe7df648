package moros

// config holds the values Options mutate before a volume is mounted.
type config struct {
	blockCount uint32
	clock      func() int64
}

func newConfig(opts []Option) config {
	cfg := config{blockCount: MaxBlocks}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option is a functional option that customizes Init/Mount/Format.
type Option func(cfg *config)

// WithBlockCount overrides the number of data blocks the bitmap covers.
// Tests use this to keep fixture volumes small.
func WithBlockCount(n uint32) Option {
	return func(cfg *config) {
		cfg.blockCount = n
	}
}

// WithClock supplies the function Format uses to stamp the superblock's
// creation time. Tests pass a fixed function for determinism; production
// code passes something like func() int64 { return time.Now().Unix() }.
func WithClock(clock func() int64) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}
