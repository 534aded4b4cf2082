package controllers

import (
	"context"
	"sync"

	"github.com/yashrajoria/storefront/models"
)

type fakeUpsellService struct {
	products []models.Product
	err      error
	locales  []models.Locale
}

func (f *fakeUpsellService) ListUpsellProducts(_ context.Context, locale models.Locale) ([]models.Product, error) {
	f.locales = append(f.locales, locale)
	return f.products, f.err
}

type addCall struct {
	cartID string
	lines  []models.CartLineInput
}

type fakeCartService struct {
	mu     sync.Mutex
	cart   *models.Cart
	getErr error
	added  *models.Cart
	addErr error
	adds   []addCall
	getIDs []string

	// addStarted is closed and addBlock awaited when set, to hold a mutation in flight.
	addStarted chan struct{}
	addBlock   chan struct{}
}

func (f *fakeCartService) GetCart(_ context.Context, cartID string, _ models.Locale) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getIDs = append(f.getIDs, cartID)
	if cartID == "" {
		return nil, nil
	}
	return f.cart, f.getErr
}

func (f *fakeCartService) AddLines(_ context.Context, cartID string, lines []models.CartLineInput, _ models.Locale) (*models.Cart, error) {
	if f.addStarted != nil {
		close(f.addStarted)
		<-f.addBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, addCall{cartID: cartID, lines: lines})
	return f.added, f.addErr
}

type fakeFetcher struct {
	status int
	body   string
	err    error
	block  chan struct{}
}

func (f *fakeFetcher) Fetch(context.Context, string) (int, []byte, error) {
	if f.block != nil {
		<-f.block
	}
	return f.status, []byte(f.body), f.err
}
