package dedupe

// Option configures a Deduper.
type Option func(*Deduper)

// WithKey sets the row identity function. A nil function is ignored.
func WithKey(fn KeyFunc) Option {
	return func(d *Deduper) {
		if fn != nil {
			d.key = fn
		}
	}
}
