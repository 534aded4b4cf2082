package services

import (
	"context"

	"github.com/yashrajoria/storefront/clients"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	"go.uber.org/zap"
)

// UpsellCache is the optional read-through cache in front of the catalog query.
type UpsellCache interface {
	GetUpsell(ctx context.Context, locale string) ([]models.Product, bool)
	SetUpsell(ctx context.Context, locale string, products []models.Product)
}

// UpsellService lists the products suggested next to the cart.
type UpsellService interface {
	ListUpsellProducts(ctx context.Context, locale models.Locale) ([]models.Product, error)
}

type upsellServiceImpl struct {
	storefront clients.StorefrontExecutor
	cache      UpsellCache
	logger     *zap.Logger
}

// NewUpsellService creates an UpsellService. cache may be nil.
func NewUpsellService(storefront clients.StorefrontExecutor, cache UpsellCache, logger *zap.Logger) UpsellService {
	return &upsellServiceImpl{storefront: storefront, cache: cache, logger: logger}
}

// ListUpsellProducts runs the fixed products query. The result is never nil on success.
func (s *upsellServiceImpl) ListUpsellProducts(ctx context.Context, locale models.Locale) ([]models.Product, error) {
	if s.cache != nil {
		if products, ok := s.cache.GetUpsell(ctx, locale.String()); ok {
			return nonNil(products), nil
		}
	}

	var data struct {
		Products *models.ProductConnection `json:"products"`
	}
	if err := s.storefront.Query(ctx, "CartUpsellProducts", clients.UpsellProductsQuery, locale.Variables(), &data); err != nil {
		s.logger.Error("upsell products query failed", zap.String("locale", locale.String()), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrFetchProducts, err)
	}

	var products []models.Product
	if data.Products != nil {
		products = data.Products.Nodes
	}
	products = nonNil(products)

	if s.cache != nil {
		s.cache.SetUpsell(ctx, locale.String(), products)
	}
	return products, nil
}

func nonNil(p []models.Product) []models.Product {
	if p == nil {
		return []models.Product{}
	}
	return p
}
