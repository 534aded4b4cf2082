package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yashrajoria/storefront/clients"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/metrics"
	"github.com/yashrajoria/storefront/models"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"go.uber.org/zap"
)

const EventCartLinesAdded = "cart.lines_added"

// errCartNotFound marks a mutation against a cart the Storefront no longer knows.
var errCartNotFound = errors.New("cart not found")

// CartService reads and mutates the shopper's Storefront cart.
type CartService interface {
	GetCart(ctx context.Context, cartID string, locale models.Locale) (*models.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []models.CartLineInput, locale models.Locale) (*models.Cart, error)
}

type cartServiceImpl struct {
	storefront  clients.StorefrontExecutor
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	metrics     awspkg.MetricsRecorder
	logger      *zap.Logger
}

// NewCartService creates a CartService. snsClient and recorder may be nil.
func NewCartService(
	storefront clients.StorefrontExecutor,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	recorder awspkg.MetricsRecorder,
	logger *zap.Logger,
) CartService {
	return &cartServiceImpl{
		storefront:  storefront,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		metrics:     recorder,
		logger:      logger,
	}
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
}

// cartMissing recognises the user error returned for an expired or unknown cart id.
func (ue userError) cartMissing() bool {
	if len(ue.Field) > 0 && ue.Field[0] == "cartId" {
		return true
	}
	return strings.Contains(strings.ToLower(ue.Message), "cart does not exist")
}

type cartPayload struct {
	Cart       *models.Cart `json:"cart"`
	UserErrors []userError  `json:"userErrors"`
}

// GetCart returns nil without error when there is no cart id or the cart no longer exists.
func (s *cartServiceImpl) GetCart(ctx context.Context, cartID string, locale models.Locale) (*models.Cart, error) {
	if cartID == "" {
		return nil, nil
	}

	vars := locale.Variables()
	vars["cartId"] = cartID

	var data struct {
		Cart *models.Cart `json:"cart"`
	}
	if err := s.storefront.Query(ctx, "Cart", clients.CartQuery, vars, &data); err != nil {
		s.logger.Error("cart query failed", zap.String("cart_id", cartID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrCartLoad, err)
	}
	return data.Cart, nil
}

// AddLines creates a cart when cartID is empty, otherwise appends to it.
func (s *cartServiceImpl) AddLines(ctx context.Context, cartID string, lines []models.CartLineInput, locale models.Locale) (*models.Cart, error) {
	if len(lines) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Errorf("no lines to add"))
	}
	for _, l := range lines {
		if l.MerchandiseID == "" || l.Quantity < 1 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Errorf("invalid line %+v", l))
		}
	}

	operation, query, vars := addLinesRequest(cartID, lines, locale)
	payload, err := s.mutate(ctx, operation, query, vars)
	if cartID != "" && errors.Is(err, errCartNotFound) {
		// The cookie outlived the cart; start a fresh one with the same lines.
		s.logger.Info("cart expired, creating a new one", zap.String("cart_id", cartID))
		metrics.CartMutationsTotal.WithLabelValues(operation, "expired").Inc()
		operation, query, vars = addLinesRequest("", lines, locale)
		payload, err = s.mutate(ctx, operation, query, vars)
	}
	if err != nil {
		metrics.CartMutationsTotal.WithLabelValues(operation, "error").Inc()
		s.record(ctx, awspkg.MetricCartLinesAddFailed, operation)
		s.logger.Error("add cart lines failed", zap.String("operation", operation), zap.String("cart_id", cartID), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrCartMutation, err)
	}

	metrics.CartMutationsTotal.WithLabelValues(operation, "ok").Inc()
	s.record(ctx, awspkg.MetricCartLinesAdded, operation)
	s.publishLinesAdded(ctx, payload.Cart.ID, lines)
	return payload.Cart, nil
}

func addLinesRequest(cartID string, lines []models.CartLineInput, locale models.Locale) (operation, query string, vars map[string]any) {
	vars = locale.Variables()
	if cartID == "" {
		vars["input"] = map[string]any{"lines": lines}
		return "CartCreate", clients.CartCreateMutation, vars
	}
	vars["cartId"] = cartID
	vars["lines"] = lines
	return "CartLinesAdd", clients.CartLinesAddMutation, vars
}

func (s *cartServiceImpl) mutate(ctx context.Context, operation, query string, vars map[string]any) (*cartPayload, error) {
	var data map[string]cartPayload
	if err := s.storefront.Query(ctx, operation, query, vars, &data); err != nil {
		return nil, err
	}

	// The payload sits under the mutation field, e.g. "cartLinesAdd".
	field := strings.ToLower(operation[:1]) + operation[1:]
	payload, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("storefront %s: missing %s payload", operation, field)
	}
	if len(payload.UserErrors) > 0 {
		msgs := make([]string, 0, len(payload.UserErrors))
		missing := false
		for _, ue := range payload.UserErrors {
			msgs = append(msgs, ue.Message)
			missing = missing || ue.cartMissing()
		}
		if missing {
			return nil, fmt.Errorf("storefront %s: %s: %w", operation, strings.Join(msgs, "; "), errCartNotFound)
		}
		return nil, fmt.Errorf("storefront %s: %s", operation, strings.Join(msgs, "; "))
	}
	if payload.Cart == nil {
		return nil, fmt.Errorf("storefront %s: no cart returned", operation)
	}
	return &payload, nil
}

func (s *cartServiceImpl) record(ctx context.Context, metricName, operation string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	if err := s.metrics.RecordCount(ctx, metricName, map[string]string{"Operation": operation}); err != nil {
		s.logger.Warn("failed to record cart metric", zap.String("metric", metricName), zap.Error(err))
	}
}

func (s *cartServiceImpl) publishLinesAdded(ctx context.Context, cartID string, lines []models.CartLineInput) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	event := models.CartLinesAddedEvent{
		Event:     EventCartLinesAdded,
		CartID:    cartID,
		Lines:     lines,
		Timestamp: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to marshal cart event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, EventCartLinesAdded, body); err != nil {
		s.logger.Warn("failed to publish cart event", zap.String("cart_id", cartID), zap.Error(err))
	}
}
