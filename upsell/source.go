package upsell

import (
	"context"
	"sync"

	"github.com/yashrajoria/storefront/metrics"
	"github.com/yashrajoria/storefront/models"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"go.uber.org/zap"
)

// Endpoint is the path every mount fetches.
const Endpoint = "/api/cart-upsell-products"

// Fetcher performs the HTTP GET for path and returns the raw response.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (status int, body []byte, err error)
}

// Phase names which of the three states a snapshot is in.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseErrored
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseErrored:
		return "errored"
	default:
		return "ready"
	}
}

// State is a snapshot of the slot.
type State struct {
	Products []models.Product
	Loading  bool
	Err      error
}

// Phase reports the snapshot's state. Loading wins over an error, which wins over products.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != nil:
		return PhaseErrored
	default:
		return PhaseReady
	}
}

// Source owns the upsell list for one cart surface. It fetches once per mount.
type Source struct {
	log      *zap.Logger
	recorder awspkg.MetricsRecorder

	mu    sync.RWMutex
	state State
	alive bool

	done chan struct{}
}

// Option configures a Source at mount.
type Option func(*Source)

// WithRecorder also counts fetch outcomes in CloudWatch.
func WithRecorder(rec awspkg.MetricsRecorder) Option {
	return func(s *Source) { s.recorder = rec }
}

// Mount starts the single fetch. The request outlives ctx's cancellation; only its values are kept.
func Mount(ctx context.Context, f Fetcher, log *zap.Logger, opts ...Option) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Source{
		log:   log,
		state: State{Loading: true},
		alive: true,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run(context.WithoutCancel(ctx), f)
	return s
}

func (s *Source) run(ctx context.Context, f Fetcher) {
	defer close(s.done)

	var next State
	status, body, err := f.Fetch(ctx, Endpoint)
	if err != nil {
		next.Err = networkError(err)
	} else {
		next.Products, next.Err = Decode(status, body)
	}

	if !s.settle(next) {
		metrics.UpsellFetchTotal.WithLabelValues("dropped").Inc()
		awspkg.RecordCountAsync(ctx, s.recorder, awspkg.MetricUpsellFetches, map[string]string{"Outcome": "dropped"})
		return
	}

	kind := outcome(next.Err)
	metrics.UpsellFetchTotal.WithLabelValues(kind).Inc()
	awspkg.RecordCountAsync(ctx, s.recorder, awspkg.MetricUpsellFetches, map[string]string{"Outcome": kind})
	if next.Err != nil {
		awspkg.RecordCountAsync(ctx, s.recorder, awspkg.MetricUpsellFetchFailed, map[string]string{"Outcome": kind})
		s.log.Warn("upsell fetch failed", zap.String("outcome", kind), zap.Error(next.Err))
		return
	}
	s.log.Debug("upsell products loaded", zap.Int("count", len(next.Products)))
}

// settle stores the terminal state unless the slot was unmounted first.
func (s *Source) settle(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return false
	}
	next.Loading = false
	s.state = next
	return true
}

// State returns a copy of the current snapshot.
func (s *Source) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Unmount detaches the slot. A fetch that settles afterwards is discarded.
func (s *Source) Unmount() {
	s.mu.Lock()
	s.alive = false
	s.mu.Unlock()
}

// Done is closed when the fetch has settled, whether or not its result was kept.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the fetch settles or ctx ends, then returns the current snapshot.
func (s *Source) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.done:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}
