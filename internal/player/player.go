// Package player implements the sound loader/player: it resolves an ordered
// list of resource identifiers into decoded audio buffers and exposes a
// fire-and-forget trigger that plays one of them through a gain/pan graph.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"chime.click/internal/audio"
	"chime.click/internal/fetch"
)

// ErrNoPlayableResources is returned by a load when every resource failed
// and the silence fallback is disabled
var ErrNoPlayableResources = errors.New("no playable resources")

// ErrDisposed is returned when an operation runs against a closed loader
var ErrDisposed = errors.New("loader is disposed")

// MuteReader is the narrow capability through which the loader observes the
// process-wide mute flag. It is read once per trigger invocation.
type MuteReader interface {
	Muted() bool
}

// State tracks the load lifecycle of a Loader
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loader resolves resource identifiers into decoded buffers and plays them.
// Buffers are owned exclusively by the loader that decoded them. Loading
// happens at most once per instance unless the loader is discarded.
type Loader struct {
	resources []string
	opts      options

	fetcher  fetch.Fetcher
	registry *audio.DecoderRegistry
	backends audio.BackendFactory
	mute     MuteReader

	mu       sync.Mutex
	state    State
	loadErr  error
	buffers  []*audio.Buffer
	loadDone chan struct{}
	shared   audio.Backend
	disposed bool

	sessions sync.WaitGroup
}

// New creates a Loader over the given resource identifiers. With lazy
// loading disabled, resource loading begins immediately in the background;
// otherwise it is deferred until the first trigger.
func New(resources []string, fetcher fetch.Fetcher, registry *audio.DecoderRegistry, backends audio.BackendFactory, mute MuteReader, opts ...Option) *Loader {
	resolved := defaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}
	if resolved.randIntn == nil {
		resolved.randIntn = rand.Intn
	}

	l := &Loader{
		resources: append([]string(nil), resources...),
		opts:      resolved,
		fetcher:   fetcher,
		registry:  registry,
		backends:  backends,
		mute:      mute,
		state:     StateUnloaded,
		loadDone:  make(chan struct{}),
	}

	slog.Debug("loader created",
		"resources", len(l.resources),
		"volume", resolved.volume,
		"pan", resolved.pan,
		"lazy_load", resolved.lazyLoad,
		"shuffle", resolved.shuffle,
		"one_shot", resolved.oneShot,
		"fallback_to_silence", resolved.fallbackToSilence,
		"backend_type", resolved.backendType)

	if !resolved.lazyLoad {
		l.Load()
	}

	return l
}

// State returns the current load state
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Buffers returns the decoded buffer set. Meaningful only once loaded.
func (l *Loader) Buffers() []*audio.Buffer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffers
}

// Load starts resource loading in the background. It is idempotent: only
// the first call moves the loader out of the unloaded state, every later
// call is a no-op regardless of load progress.
func (l *Loader) Load() {
	l.mu.Lock()
	if l.disposed || l.state != StateUnloaded {
		state := l.state
		l.mu.Unlock()
		slog.Debug("load request ignored", "state", state.String(), "disposed", l.disposed)
		return
	}
	l.state = StateLoading
	l.mu.Unlock()

	slog.Debug("load started", "resources", len(l.resources))
	go l.loadAll(context.Background())
}

// WaitReady blocks until loading has finished (successfully or not) and
// returns the terminal load error, if any. It does not initiate a load.
func (l *Loader) WaitReady(ctx context.Context) error {
	select {
	case <-l.loadDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadErr
}

// loadAll fetches and decodes every resource concurrently, keeps the
// successes in input order, and commits the buffer set.
func (l *Loader) loadAll(ctx context.Context) {
	defer close(l.loadDone)

	type result struct {
		buf *audio.Buffer
		err error
	}
	results := make([]result, len(l.resources))

	var wg sync.WaitGroup
	for i, resource := range l.resources {
		wg.Add(1)
		go func(i int, resource string) {
			defer wg.Done()
			buf, err := l.fetchAndDecode(ctx, resource)
			results[i] = result{buf: buf, err: err}
		}(i, resource)
	}
	wg.Wait()

	// Failures are filtered, not reordered; survivors keep input order
	buffers := make([]*audio.Buffer, 0, len(results))
	for i, res := range results {
		if res.err != nil {
			slog.Warn("resource failed to load",
				"resource", l.resources[i],
				"error", res.err)
			if l.opts.onLoadError != nil {
				l.opts.onLoadError(l.resources[i], res.err)
			}
			continue
		}
		buffers = append(buffers, res.buf)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disposed {
		// Disposed mid-load: discard the late result
		slog.Debug("discarding load result for disposed loader")
		l.state = StateFailed
		l.loadErr = ErrDisposed
		return
	}

	if len(buffers) == 0 {
		if !l.opts.fallbackToSilence {
			slog.Error("all resources failed and silence fallback is disabled",
				"resources", len(l.resources))
			l.state = StateFailed
			l.loadErr = ErrNoPlayableResources
			return
		}

		slog.Info("all resources failed, substituting silent buffer",
			"resources", len(l.resources))
		buffers = append(buffers, audio.NewDefaultSilentBuffer())
	}

	l.buffers = buffers
	l.state = StateLoaded

	slog.Info("load completed",
		"requested", len(l.resources),
		"loaded", len(buffers))
}

func (l *Loader) fetchAndDecode(ctx context.Context, resource string) (*audio.Buffer, error) {
	data, err := l.fetcher.Fetch(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	buf, err := l.registry.Decode(resource, data)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return buf, nil
}

// Trigger plays one buffer, fire-and-forget. It never blocks on playback
// and has no return value; every anomalous condition degrades to a silent
// no-op. The global mute flag is read once, first, and short-circuits all
// side effects including lazy loading.
func (l *Loader) Trigger() {
	if l.mute != nil && l.mute.Muted() {
		slog.Debug("trigger while muted, skipping")
		return
	}

	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		slog.Debug("trigger on disposed loader, skipping")
		return
	}

	switch l.state {
	case StateUnloaded:
		if !l.opts.lazyLoad {
			// Caller ordering error: non-lazy loader triggered before its
			// background load registered. Nothing to play.
			l.mu.Unlock()
			slog.Debug("trigger before load on non-lazy loader, skipping")
			return
		}
		l.state = StateLoading
		l.mu.Unlock()
		slog.Debug("lazy load initiated by trigger")
		go l.loadAll(context.Background())
	case StateLoading:
		if !l.opts.lazyLoad {
			// Trigger-before-ready on a non-lazy loader: silent no-op, the
			// construction-time load is not awaited.
			l.mu.Unlock()
			slog.Debug("trigger before non-lazy load completed, skipping")
			return
		}
		l.mu.Unlock()
	case StateFailed:
		l.mu.Unlock()
		slog.Debug("trigger on failed loader, skipping")
		return
	default:
		l.mu.Unlock()
	}

	// Each trigger independently awaits load completion, then plays.
	l.sessions.Add(1)
	go func() {
		defer l.sessions.Done()
		if err := l.WaitReady(context.Background()); err != nil {
			slog.Debug("trigger abandoned, load did not complete", "error", err)
			return
		}
		l.playOnce(context.Background())
	}()
}

// playOnce selects a buffer and runs one playback session
func (l *Loader) playOnce(ctx context.Context) {
	l.mu.Lock()
	if l.disposed || len(l.buffers) == 0 {
		l.mu.Unlock()
		slog.Debug("playback skipped", "disposed", l.disposed)
		return
	}

	index := 0
	if l.opts.shuffle && len(l.buffers) > 1 {
		index = l.opts.randIntn(len(l.buffers))
	}
	buf := l.buffers[index]
	l.mu.Unlock()

	slog.Debug("playback session selected buffer",
		"index", index,
		"shuffle", l.opts.shuffle,
		"duration_ms", buf.Duration().Milliseconds())

	if l.opts.oneShot {
		l.playOneShot(ctx, buf)
		return
	}
	l.playShared(ctx, buf)
}

// playShared plays through the shared backend, creating it on first use
func (l *Loader) playShared(ctx context.Context, buf *audio.Buffer) {
	l.mu.Lock()
	if l.disposed {
		// Close may have taken the shared backend between buffer selection
		// and this point; creating a replacement here would leak it.
		l.mu.Unlock()
		slog.Debug("playback skipped, loader disposed")
		return
	}
	if l.shared == nil {
		backend, err := l.backends.CreateBackend(l.opts.backendType)
		if err != nil {
			l.mu.Unlock()
			slog.Error("failed to create shared backend", "error", err)
			return
		}
		if err := backend.Start(); err != nil {
			l.mu.Unlock()
			slog.Error("failed to start shared backend", "error", err)
			return
		}
		l.shared = backend
		slog.Debug("shared backend created", "type", l.opts.backendType)
	}
	backend := l.shared
	l.mu.Unlock()

	if err := backend.Play(ctx, buf, l.opts.volume, l.opts.pan); err != nil {
		slog.Error("shared playback failed", "error", err)
	}
}

// playOneShot creates a dedicated backend for this session and closes it
// exactly once when playback ends
func (l *Loader) playOneShot(ctx context.Context, buf *audio.Buffer) {
	backend, err := l.backends.CreateBackend(l.opts.backendType)
	if err != nil {
		slog.Error("failed to create one-shot backend", "error", err)
		return
	}
	if err := backend.Start(); err != nil {
		slog.Error("failed to start one-shot backend", "error", err)
		return
	}

	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("failed to close one-shot backend", "error", err)
		} else {
			slog.Debug("one-shot backend closed")
		}
	}()

	if err := backend.Play(ctx, buf, l.opts.volume, l.opts.pan); err != nil {
		slog.Error("one-shot playback failed", "error", err)
	}
}

// Close disposes the loader: no new triggers are accepted, disposal waits
// for in-flight playback sessions, then the shared backend and the buffer
// set are released. One-shot backends self-close and need nothing here.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return nil
	}
	l.disposed = true
	shared := l.shared
	l.shared = nil
	l.mu.Unlock()

	slog.Debug("loader closing, waiting for in-flight sessions")
	l.sessions.Wait()

	var err error
	if shared != nil {
		err = shared.Close()
		if err != nil {
			slog.Error("failed to close shared backend", "error", err)
		}
	}

	l.mu.Lock()
	l.buffers = nil
	l.mu.Unlock()

	slog.Debug("loader closed")
	return err
}
