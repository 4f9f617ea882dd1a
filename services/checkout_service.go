package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-service/apperrors"
	"checkout-service/logger"
	"checkout-service/models"
	aws_pkg "checkout-service/pkg/aws"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CheckoutService implements the server side of the payment intent lifecycle.
// It holds no per-checkout state; every call is an independent transformation.
type CheckoutService interface {
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	Items() []models.CatalogItem
	ResolveCurrency(requested string) string
	InitPayment(ctx context.Context, req *models.InitPaymentRequest) (*models.PaymentIntent, error)
	UpdateIntent(ctx context.Context, req *models.UpdateIntentRequest) (string, error)
	LookupReceipt(ctx context.Context, intentID string) (*models.Receipt, error)
}

type checkoutServiceImpl struct {
	catalog  *Catalog
	currency CurrencyPolicy
	gateway  PaymentGateway
	cache    ReceiptCache
	events   *EventPublisher
	metrics  aws_pkg.Recorder
	logger   *zap.Logger
	lookups  singleflight.Group
}

// CheckoutDeps groups the collaborators of the checkout service. Cache,
// Events and Metrics are optional.
type CheckoutDeps struct {
	Catalog  *Catalog
	Currency CurrencyPolicy
	Gateway  PaymentGateway
	Cache    ReceiptCache
	Events   *EventPublisher
	Metrics  aws_pkg.Recorder
	Logger   *zap.Logger
}

// receiptLookupTimeout bounds a shared receipt lookup, which outlives the
// request that started it.
const receiptLookupTimeout = 30 * time.Second

func NewCheckoutService(deps CheckoutDeps) CheckoutService {
	s := &checkoutServiceImpl{
		catalog:  deps.Catalog,
		currency: deps.Currency,
		gateway:  deps.Gateway,
		cache:    deps.Cache,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
	if s.catalog == nil {
		s.catalog = NewCatalog()
	}
	if s.cache == nil {
		s.cache = NoopReceiptCache{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *checkoutServiceImpl) GetItem(_ context.Context, id string) (*models.CatalogItem, error) {
	item, err := s.catalog.GetItem(id)
	if err != nil {
		return nil, apperrors.NotFound("Invalid item id supplied")
	}
	return &item, nil
}

func (s *checkoutServiceImpl) Items() []models.CatalogItem {
	return s.catalog.Items()
}

func (s *checkoutServiceImpl) ResolveCurrency(requested string) string {
	return s.currency.Resolve(requested)
}

// InitPayment creates an intent for the catalog price of the requested item.
// Unknown items are rejected before the gateway is called.
func (s *checkoutServiceImpl) InitPayment(ctx context.Context, req *models.InitPaymentRequest) (*models.PaymentIntent, error) {
	itemID := strings.TrimSpace(req.Item)
	if itemID == "" {
		return nil, apperrors.Validation("Invalid request")
	}
	item, err := s.catalog.GetItem(itemID)
	if err != nil {
		s.log(ctx).Warn("Init payment for unknown item", zap.String("item_id", itemID))
		return nil, apperrors.Validation("Invalid amount or item")
	}
	currency := s.currency.Resolve(req.Currency)

	pi, err := s.gateway.CreateIntent(ctx, item.Amount, currency)
	if err != nil {
		s.log(ctx).Error("Failed to create payment intent",
			zap.String("item_id", item.ID),
			zap.String("currency", currency),
			zap.Error(err),
		)
		s.record(ctx, aws_pkg.MetricGatewayErrors, map[string]string{"Operation": "CreateIntent"})
		return nil, gatewayError(err)
	}

	s.log(ctx).Info("Payment intent created",
		zap.String("intent_id", pi.ID),
		zap.String("item_id", item.ID),
		zap.Int64("amount", pi.Amount),
		zap.String("currency", pi.Currency),
	)
	s.record(ctx, aws_pkg.MetricPaymentIntentsCreated, map[string]string{"Currency": currency})
	s.events.Publish(ctx, models.CheckoutEvent{
		Type:      models.EventIntentCreated,
		IntentID:  pi.ID,
		ItemID:    item.ID,
		Amount:    pi.Amount,
		Currency:  pi.Currency,
		Timestamp: time.Now().UTC(),
	})
	return pi, nil
}

// UpdateIntent attaches the buyer's email to the intent and returns the
// client secret the browser must confirm with.
func (s *checkoutServiceImpl) UpdateIntent(ctx context.Context, req *models.UpdateIntentRequest) (string, error) {
	intentID := strings.TrimSpace(req.PI)
	email := strings.TrimSpace(req.Email)
	if intentID == "" || email == "" {
		return "", apperrors.Validation("Payment intent and email are required")
	}

	secret, err := s.gateway.AttachReceiptEmail(ctx, intentID, email)
	if err != nil {
		s.log(ctx).Error("Failed to update payment intent", zap.String("intent_id", intentID), zap.Error(err))
		s.record(ctx, aws_pkg.MetricGatewayErrors, map[string]string{"Operation": "AttachReceiptEmail"})
		return "", gatewayError(err)
	}

	s.record(ctx, aws_pkg.MetricPaymentIntentsUpdated, nil)
	s.events.Publish(ctx, models.CheckoutEvent{
		Type:      models.EventIntentUpdated,
		IntentID:  intentID,
		Timestamp: time.Now().UTC(),
	})
	return secret, nil
}

// LookupReceipt finds the succeeded charge of an intent. An intent without one
// yields an unknown-charge error, not a gateway error. Concurrent lookups of
// the same intent share one gateway call, which is detached from the
// cancellation of the caller that started it.
func (s *checkoutServiceImpl) LookupReceipt(ctx context.Context, intentID string) (*models.Receipt, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, apperrors.UnknownCharge()
	}
	s.record(ctx, aws_pkg.MetricReceiptLookups, nil)

	v, err, _ := s.lookups.Do(intentID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptLookupTimeout)
		defer cancel()

		receipt, err := s.cache.Get(ctx, intentID)
		if err == nil {
			s.record(ctx, aws_pkg.MetricCacheHits, map[string]string{"Cache": "receipt"})
			return receipt, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log(ctx).Warn("Receipt cache read failed", zap.String("intent_id", intentID), zap.Error(err))
		}
		s.record(ctx, aws_pkg.MetricCacheMisses, map[string]string{"Cache": "receipt"})

		charges, err := s.gateway.ListCharges(ctx, intentID)
		if err != nil {
			s.log(ctx).Error("Failed to list charges", zap.String("intent_id", intentID), zap.Error(err))
			s.record(ctx, aws_pkg.MetricGatewayErrors, map[string]string{"Operation": "ListCharges"})
			return nil, gatewayError(err)
		}

		ch, ok := SucceededCharge(charges)
		if !ok {
			s.log(ctx).Warn("No succeeded charge for payment intent",
				zap.String("intent_id", intentID),
				zap.Int("charges", len(charges)),
			)
			s.record(ctx, aws_pkg.MetricReceiptMisses, nil)
			return nil, apperrors.UnknownCharge()
		}

		receipt = &models.Receipt{
			IntentID:   intentID,
			ChargeID:   ch.ID,
			Amount:     FormatMinorUnits(ch.AmountCaptured),
			Currency:   ch.Currency,
			Email:      ch.ReceiptEmail(),
			ReceiptURL: ch.ReceiptURL,
		}
		if err := s.cache.Set(ctx, receipt); err != nil {
			s.log(ctx).Warn("Receipt cache write failed", zap.String("intent_id", intentID), zap.Error(err))
		}
		return receipt, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Receipt), nil
}

// SucceededCharge returns the first charge with status succeeded.
func SucceededCharge(charges []models.Charge) (models.Charge, bool) {
	for _, ch := range charges {
		if ch.Status == models.ChargeSucceeded {
			return ch, true
		}
	}
	return models.Charge{}, false
}

// FormatMinorUnits renders an amount in minor units with two decimals, 2300 -> "23.00".
func FormatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

func gatewayError(err error) error {
	if apperrors.IsKind(err, apperrors.KindGateway) {
		return err
	}
	return apperrors.Gateway(err)
}

// log returns the service logger tagged with the request id carried by ctx.
func (s *checkoutServiceImpl) log(ctx context.Context) *zap.Logger {
	return s.logger.With(zap.String("request_id", logger.RequestID(ctx)))
}

func (s *checkoutServiceImpl) record(ctx context.Context, metric string, dims map[string]string) {
	if s.metrics == nil {
		return
	}
	go func() {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.metrics.RecordCount(mctx, metric, dims); err != nil {
			s.logger.Debug("Metric dropped", zap.String("metric", metric), zap.Error(err))
		}
	}()
}
