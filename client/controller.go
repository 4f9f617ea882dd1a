package client

import (
	"context"
	"errors"
	"net/url"

	"checkout-service/apperrors"
	"checkout-service/config"
	"checkout-service/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MultipleOptionsHint = "Multiple payment options available"
	MsgRetry            = "Payment could not be completed. Please try again."
	msgGenericFailure   = "Something went wrong. Please try again."
)

// ErrIncomplete is returned when a confirmation neither succeeded nor failed.
var ErrIncomplete = errors.New("payment requires further action")

// Controller drives the card form and the payment request button of one
// checkout. Both paths confirm the same intent; the first one the buyer
// interacts with wins and the other is hidden.
type Controller struct {
	backend   Backend
	processor Processor
	ui        UI
	logger    *zap.Logger

	session *Session
	card    CardElement
}

func NewController(backend Backend, processor Processor, ui UI, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{backend: backend, processor: processor, ui: ui, logger: logger}
}

// Session returns the active checkout, nil before Start succeeded.
func (c *Controller) Session() *Session {
	return c.session
}

// Start loads the config and item, creates the intent and only then mounts
// the card field and, when the browser supports it, the request button.
func (c *Controller) Start(ctx context.Context, itemID, currency string) (*Session, error) {
	var (
		cfg  *config.ClientConfig
		item *models.CatalogItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cfg, err = c.backend.PaymentConfig(gctx)
		return err
	})
	g.Go(func() (err error) {
		item, err = c.backend.Item(gctx, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		c.ui.ShowError(userMessage(err))
		return nil, err
	}

	intent, err := c.backend.InitPayment(ctx, itemID, currency)
	if err != nil {
		c.ui.ShowError(userMessage(err))
		return nil, err
	}

	session := &Session{
		ItemID:   itemID,
		Currency: intent.Currency,
		Item:     *item,
		Intent:   *intent,
	}

	card, err := c.processor.MountCard(ctx)
	if err != nil {
		c.ui.ShowError(userMessage(err))
		return nil, err
	}
	c.card = card
	c.session = session

	pr := c.processor.PaymentRequest(Descriptor{
		Country:           cfg.Country,
		Currency:          intent.Currency,
		Label:             item.Title,
		Amount:            item.Amount,
		RequestPayerEmail: true,
	})
	supported, err := pr.CanMakePayment(ctx)
	if err != nil {
		c.logger.Warn("Payment request availability check failed", zap.Error(err))
	}
	session.PaymentRequestSupported = supported && err == nil
	if session.PaymentRequestSupported {
		c.ui.ShowRequestButton(MultipleOptionsHint)
	} else {
		c.ui.HideRequestButton()
	}

	c.logger.Info("Checkout started",
		zap.String("intent_id", intent.ID),
		zap.String("item_id", itemID),
		zap.String("currency", intent.Currency),
		zap.Bool("payment_request_supported", session.PaymentRequestSupported),
	)
	return session, nil
}

// OnCardChange reacts to edits of the card field. The first non-empty edit
// engages the card path.
func (c *Controller) OnCardChange(ev CardChange) {
	if c.session == nil {
		return
	}
	if !ev.Empty {
		if err := c.session.engageCard(); err == nil {
			c.ui.HideRequestButton()
		}
	}
	c.ui.SetPayEnabled(!ev.Empty)
	c.ui.ShowError(ev.Error)
}

// SubmitCard attaches the buyer's email to the intent and confirms it with
// the card field. Failures re-enable the form for another attempt.
func (c *Controller) SubmitCard(ctx context.Context, email string) error {
	s := c.session
	if s == nil {
		return errors.New("checkout not started")
	}
	if err := s.engageCard(); err != nil {
		return err
	}
	c.ui.HideRequestButton()
	c.ui.SetPayEnabled(false)
	c.ui.SetSpinner(true)

	secret, err := c.backend.UpdateIntent(ctx, s.Intent.ID, s.Intent.ClientSecret, email)
	if err != nil {
		return c.fail(err)
	}

	conf, err := c.processor.ConfirmCardPayment(ctx, secret, PaymentMethod{Card: c.card}, true)
	if err != nil {
		return c.fail(err)
	}
	if conf.Status != models.IntentSucceeded {
		c.logger.Warn("Card confirmation incomplete", zap.String("intent_id", s.Intent.ID), zap.String("status", conf.Status))
		return c.fail(ErrIncomplete)
	}

	c.ui.SetSpinner(false)
	c.ui.Navigate(successPath(s.Intent.ID))
	return nil
}

// OnPaymentMethod confirms the intent with the wallet's payment method.
// Further actions such as 3-D Secure are not handled on this path; an intent
// left in requires_action gets a generic retry message.
func (c *Controller) OnPaymentMethod(ctx context.Context, ev PaymentMethodEvent) error {
	s := c.session
	if s == nil {
		ev.Complete(CompleteFail)
		return errors.New("checkout not started")
	}
	if err := s.engageRequestButton(); err != nil {
		ev.Complete(CompleteFail)
		return err
	}
	c.ui.HideCardForm()

	conf, err := c.processor.ConfirmCardPayment(ctx, s.Intent.ClientSecret, PaymentMethod{ID: ev.PaymentMethodID}, false)
	if err != nil {
		ev.Complete(CompleteFail)
		c.ui.ShowError(userMessage(err))
		return err
	}
	ev.Complete(CompleteSuccess)

	if conf.Status != models.IntentSucceeded {
		c.logger.Warn("Payment request confirmation incomplete",
			zap.String("intent_id", s.Intent.ID),
			zap.String("status", conf.Status),
		)
		c.ui.ShowError(MsgRetry)
		return ErrIncomplete
	}

	c.logger.Info("Payment request confirmed", zap.String("intent_id", s.Intent.ID), zap.String("payer_email", ev.PayerEmail))
	c.ui.Navigate(successPath(s.Intent.ID))
	return nil
}

func (c *Controller) fail(err error) error {
	c.ui.SetSpinner(false)
	c.ui.SetPayEnabled(true)
	c.ui.ShowError(userMessage(err))
	return err
}

// userMessage shows processor declines and server messages as they are;
// anything else becomes a generic failure.
func userMessage(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrIncomplete):
		return MsgRetry
	case apperrors.IsKind(err, apperrors.KindConfirmation):
		return apperrors.From(err).Message
	case apperrors.IsKind(err, apperrors.KindGateway):
		return apperrors.MsgGatewayUnavailable
	case errors.As(err, &statusErr) && statusErr.Message != "":
		return statusErr.Message
	default:
		return msgGenericFailure
	}
}

func successPath(intentID string) string {
	return "/success?pi=" + url.QueryEscape(intentID)
}
