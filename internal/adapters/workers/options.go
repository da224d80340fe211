package workers

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithSize sets the number of concurrent workers.
func WithSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}
