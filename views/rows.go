package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yashrajoria/storefront/models"
)

// DefaultToastDuration is how long the add-to-cart toast stays up.
const DefaultToastDuration = 2 * time.Second

const (
	ToastAdded  = "Added to cart"
	ToastFailed = "Could not add to cart"
)

var (
	ErrNoVariant = errors.New("views: product has no variant to add")
	ErrRowBusy   = errors.New("views: add to cart already in flight for this product")
)

// CartLinesAdder runs the "add lines" cart mutation.
type CartLinesAdder interface {
	AddLines(ctx context.Context, lines []models.CartLineInput) (*models.Cart, error)
}

// CartLinesAdderFunc adapts a function to CartLinesAdder.
type CartLinesAdderFunc func(ctx context.Context, lines []models.CartLineInput) (*models.Cart, error)

func (f CartLinesAdderFunc) AddLines(ctx context.Context, lines []models.CartLineInput) (*models.Cart, error) {
	return f(ctx, lines)
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	Message string
	Kind    ToastKind
	// DismissAfter is rendered so the browser hides the toast on the same schedule.
	DismissAfter time.Duration
}

// RowSet holds the per-product busy flags of the upsell grid and the shared toast.
// Rows are independent; only the toast is shared.
type RowSet struct {
	dismissAfter time.Duration
	// onIdle runs after a dismissal leaves no toast and no busy rows.
	onIdle func()

	mu         sync.Mutex
	busy       map[string]bool
	toast      *Toast
	toastUntil time.Time
	timer      *time.Timer
	seq        uint64
}

func NewRowSet(dismissAfter time.Duration) *RowSet {
	if dismissAfter <= 0 {
		dismissAfter = DefaultToastDuration
	}
	return &RowSet{dismissAfter: dismissAfter, busy: make(map[string]bool)}
}

func (r *RowSet) Busy(productID string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy[productID]
}

// Toast returns the visible toast, if any.
func (r *RowSet) Toast() (Toast, bool) {
	if r == nil {
		return Toast{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.toast == nil {
		return Toast{}, false
	}
	t := *r.toast
	// A later render gets whatever is left of the dismiss delay.
	if left := time.Until(r.toastUntil); left < t.DismissAfter {
		t.DismissAfter = max(left, 0)
	}
	return t, true
}

func (r *RowSet) idle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toast == nil && len(r.busy) == 0
}

// AddToCart adds one unit of variantID. The row is busy until the mutation settles,
// then the toast is shown in both outcomes and hidden after the dismiss delay.
func (r *RowSet) AddToCart(ctx context.Context, productID, variantID string, adder CartLinesAdder) (*models.Cart, error) {
	if variantID == "" {
		return nil, ErrNoVariant
	}

	r.mu.Lock()
	if r.busy[productID] {
		r.mu.Unlock()
		return nil, ErrRowBusy
	}
	r.busy[productID] = true
	r.mu.Unlock()

	cart, err := adder.AddLines(ctx, []models.CartLineInput{{MerchandiseID: variantID, Quantity: 1}})

	r.mu.Lock()
	delete(r.busy, productID)
	r.mu.Unlock()

	if err != nil {
		r.show(ToastFailed, ToastError)
		return nil, err
	}
	r.show(ToastAdded, ToastSuccess)
	return cart, nil
}

func (r *RowSet) show(msg string, kind ToastKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.seq++
	seq := r.seq
	r.toast = &Toast{Message: msg, Kind: kind, DismissAfter: r.dismissAfter}
	r.toastUntil = time.Now().Add(r.dismissAfter)
	r.timer = time.AfterFunc(r.dismissAfter, func() {
		r.mu.Lock()
		// A newer toast owns the slot.
		if r.seq == seq {
			r.toast = nil
		}
		idle := r.toast == nil && len(r.busy) == 0
		onIdle := r.onIdle
		r.mu.Unlock()

		if idle && onIdle != nil {
			onIdle()
		}
	})
}

// Close stops a pending dismissal.
func (r *RowSet) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// RowRegistry shares one RowSet per cart, so overlapping requests for the same cart see
// the same busy rows and toast. A set is dropped once nothing holds it and it is idle.
type RowRegistry struct {
	dismissAfter time.Duration

	mu   sync.Mutex
	sets map[string]*registryEntry
}

type registryEntry struct {
	rows *RowSet
	refs int
}

func NewRowRegistry(dismissAfter time.Duration) *RowRegistry {
	return &RowRegistry{dismissAfter: dismissAfter, sets: make(map[string]*registryEntry)}
}

// Acquire returns the RowSet of cartID and a release func for the end of the request.
// Without a cart id there is nothing to share, so the set is private.
func (g *RowRegistry) Acquire(cartID string) (*RowSet, func()) {
	if cartID == "" {
		return NewRowSet(g.dismissAfter), func() {}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.sets[cartID]
	if !ok {
		e = &registryEntry{rows: NewRowSet(g.dismissAfter)}
		e.rows.onIdle = func() { g.drop(cartID, e) }
		g.sets[cartID] = e
	}
	e.refs++

	var once sync.Once
	return e.rows, func() {
		once.Do(func() {
			g.mu.Lock()
			e.refs--
			g.mu.Unlock()
			g.drop(cartID, e)
		})
	}
}

// Peek returns the RowSet of cartID without holding it, or nil when the cart has none.
func (g *RowRegistry) Peek(cartID string) *RowSet {
	if cartID == "" {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.sets[cartID]; ok {
		return e.rows
	}
	return nil
}

// Len is the number of carts with a live RowSet.
func (g *RowRegistry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sets)
}

func (g *RowRegistry) drop(cartID string, e *registryEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e.refs == 0 && g.sets[cartID] == e && e.rows.idle() {
		delete(g.sets, cartID)
	}
}
