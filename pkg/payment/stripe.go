package payment

import (
	"context"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// IntentCreator creates a payment intent for a guide purchase and returns
// the client secret the frontend completes the payment with.
type IntentCreator interface {
	CreateIntent(ctx context.Context, guideID, userID string, price float64) (string, error)
}

// StripeClient is a thin pass-through to Stripe's payment-intent API.
// No pricing logic lives here; the caller supplies the price in dollars.
type StripeClient struct {
	api *client.API
}

// NewStripeClient builds a Stripe-backed IntentCreator.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

// CreateIntent creates a USD payment intent tagged with guide and user IDs.
func (c *StripeClient) CreateIntent(ctx context.Context, guideID, userID string, price float64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(price * 100))),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.Context = ctx
	params.AddMetadata("guideId", guideID)
	params.AddMetadata("userId", userID)
	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}
