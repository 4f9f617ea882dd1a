package main

import (
	"errors"
	"fmt"
	"io"

	"checkout-service/client"
	"checkout-service/logger"
	"checkout-service/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func buyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Pay for an item with a card or a wallet payment method",
		Long: `Runs one checkout against the server: creates a payment intent, then
confirms it with Stripe using the publishable key. Card payments attach
--email to the intent first; --wallet confirms like a payment request
button and uses --payer-email from the wallet instead.

Test payment methods such as pm_card_visa or pm_card_chargeDeclined can
be used with a Stripe test key.`,
		RunE: runBuy,
	}

	cmd.Flags().StringP("item", "i", "1", "Item id")
	cmd.Flags().StringP("curr", "c", "", "Currency code (server default when empty)")
	cmd.Flags().StringP("email", "e", "", "Receipt email for card payments")
	cmd.Flags().StringP("payment-method", "p", "pm_card_visa", "Stripe payment method id")
	cmd.Flags().Bool("wallet", false, "Pay through the payment request path")
	cmd.Flags().String("payer-email", "", "Email reported by the wallet")

	return cmd
}

func runBuy(cmd *cobra.Command, args []string) error {
	itemID, _ := cmd.Flags().GetString("item")
	currency, _ := cmd.Flags().GetString("curr")
	email, _ := cmd.Flags().GetString("email")
	paymentMethod, _ := cmd.Flags().GetString("payment-method")
	wallet, _ := cmd.Flags().GetBool("wallet")
	payerEmail, _ := cmd.Flags().GetString("payer-email")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if !wallet && email == "" {
		return errors.New("--email is required for card payments")
	}

	log := zap.NewNop()
	if verbose {
		log = logger.Initialize("development")
	}

	ctx := cmd.Context()
	orch := orchestrator(cmd)
	cfg, err := orch.PaymentConfig(ctx)
	if err != nil {
		return fmt.Errorf("load payment config: %w", err)
	}

	ui := &terminalUI{out: cmd.OutOrStdout(), baseURL: orch.BaseURL()}
	processor := client.NewStripeProcessor(cfg.PublishableKey, paymentMethod, wallet)
	ctrl := client.NewController(orch, processor, ui, log)

	session, err := ctrl.Start(ctx, itemID, currency)
	if err != nil {
		return err
	}
	fmt.Fprintf(ui.out, "Buying %q for %s %s (intent %s)\n",
		session.Item.Title, services.FormatMinorUnits(session.Intent.Amount), session.Intent.Currency, session.Intent.ID)

	if wallet {
		if !session.PaymentRequestSupported {
			return errors.New("payment request is not available")
		}
		return ctrl.OnPaymentMethod(ctx, client.PaymentMethodEvent{
			PayerEmail:      payerEmail,
			PaymentMethodID: paymentMethod,
			Complete: func(status string) {
				fmt.Fprintf(ui.out, "Payment sheet closed: %s\n", status)
			},
		})
	}

	ctrl.OnCardChange(client.CardChange{Empty: paymentMethod == ""})
	return ctrl.SubmitCard(ctx, email)
}

// terminalUI prints what a browser would show.
type terminalUI struct {
	out     io.Writer
	baseURL string
}

func (u *terminalUI) SetPayEnabled(bool) {}

func (u *terminalUI) SetSpinner(visible bool) {
	if visible {
		fmt.Fprintln(u.out, "Processing...")
	}
}

func (u *terminalUI) ShowError(message string) {
	if message != "" {
		fmt.Fprintf(u.out, "Error: %s\n", message)
	}
}

func (u *terminalUI) ShowRequestButton(hint string) {
	fmt.Fprintln(u.out, hint)
}

func (u *terminalUI) HideRequestButton() {}

func (u *terminalUI) HideCardForm() {}

func (u *terminalUI) Navigate(path string) {
	fmt.Fprintf(u.out, "Payment succeeded: %s%s\n", u.baseURL, path)
}
