package player

// LoadErrorFunc is invoked once per resource that failed to fetch or decode,
// with the resource identifier and the failure cause. Failures inside the
// callback are the callback author's concern.
type LoadErrorFunc func(resource string, err error)

// options holds every behavior toggle, resolved once at construction. The
// zero value is never used directly; defaultOptions supplies the default-on
// flags before functional options are applied.
type options struct {
	volume            float64
	pan               float64
	lazyLoad          bool
	shuffle           bool
	oneShot           bool
	fallbackToSilence bool
	backendType       string
	onLoadError       LoadErrorFunc
	randIntn          func(n int) int
}

func defaultOptions() options {
	return options{
		volume:            1.0,
		pan:               0.0,
		lazyLoad:          true,
		shuffle:           false,
		oneShot:           false,
		fallbackToSilence: true,
		backendType:       "auto",
	}
}

// Option configures a Loader at construction time
type Option func(*options)

// WithVolume sets the linear gain multiplier. The valid range is 0.0 to 1.0;
// out-of-range values are passed through uncapped and are the caller's
// responsibility.
func WithVolume(volume float64) Option {
	return func(o *options) { o.volume = volume }
}

// WithPan sets the stereo position, -1.0 (full left) to 1.0 (full right)
func WithPan(pan float64) Option {
	return func(o *options) { o.pan = pan }
}

// WithLazyLoad controls load timing: true defers resource loading until the
// first trigger, false starts loading at construction. Default true.
func WithLazyLoad(lazy bool) Option {
	return func(o *options) { o.lazyLoad = lazy }
}

// WithShuffle makes each trigger select a uniformly random buffer instead of
// the first one
func WithShuffle(shuffle bool) Option {
	return func(o *options) { o.shuffle = shuffle }
}

// WithOneShot makes each trigger create and close a dedicated output context
// instead of reusing a shared one
func WithOneShot(oneShot bool) Option {
	return func(o *options) { o.oneShot = oneShot }
}

// WithFallbackToSilence controls the all-resources-failed policy: true
// (default) substitutes a single synthetic silent buffer, false makes the
// load fail outright.
func WithFallbackToSilence(fallback bool) Option {
	return func(o *options) { o.fallbackToSilence = fallback }
}

// WithBackendType selects the output backend ("auto", "malgo", "oto",
// "beep", "system_command")
func WithBackendType(backendType string) Option {
	return func(o *options) { o.backendType = backendType }
}

// WithLoadErrorHandler registers the per-resource failure callback
func WithLoadErrorHandler(fn LoadErrorFunc) Option {
	return func(o *options) { o.onLoadError = fn }
}

// WithRandIntn injects the random index source used by shuffle selection.
// Tests use this to make selection deterministic.
func WithRandIntn(fn func(n int) int) Option {
	return func(o *options) { o.randIntn = fn }
}
