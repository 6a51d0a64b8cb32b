package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/papercomputeco/quire/pkg/backend"
)

// CheckResult is the reply of the check-subscription function. Both
// fields are optional; empty fields leave the stored row unchanged.
type CheckResult struct {
	Subscribed bool   `json:"subscribed"`
	Plan       PlanID `json:"plan,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Billing wraps the hosted checkout, portal and check functions.
type Billing struct {
	backend *backend.Client
}

// NewBilling creates a Billing client.
func NewBilling(c *backend.Client) *Billing {
	return &Billing{backend: c}
}

type urlReply struct {
	URL string `json:"url"`
}

// Checkout starts a checkout for plan and returns the page to open.
func (b *Billing) Checkout(ctx context.Context, token string, plan PlanID) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}

	p, ok := LookupPlan(plan)
	if !ok || p.PriceID == "" {
		return "", ErrInvalidPlan
	}

	var reply urlReply
	body := map[string]string{"priceId": p.PriceID}
	if err := b.backend.Invoke(ctx, backend.FunctionCreateCheckout, token, body, &reply); err != nil {
		return "", err
	}
	return reply.URL, nil
}

// Portal returns the customer portal page for managing a subscription.
func (b *Billing) Portal(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}

	var reply urlReply
	if err := b.backend.Invoke(ctx, backend.FunctionCustomerPortal, token, nil, &reply); err != nil {
		return "", err
	}
	return reply.URL, nil
}

// Check asks the backend for the user's current billing state.
func (b *Billing) Check(ctx context.Context, token string) (*CheckResult, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	result := &CheckResult{}
	if err := b.backend.Invoke(ctx, backend.FunctionCheckSubscription, token, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Refresh runs a billing check and folds the result into the stored row.
func Refresh(ctx context.Context, b *Billing, store Store, userID, token string, now time.Time) (*Subscription, error) {
	result, err := b.Check(ctx, token)
	if err != nil {
		return nil, err
	}

	sub, err := Ensure(ctx, store, userID, now)
	if err != nil {
		return nil, err
	}

	changed := false
	if result.Plan != "" && result.Plan != sub.Plan {
		p, ok := LookupPlan(result.Plan)
		if !ok {
			return nil, fmt.Errorf("check-subscription: unknown plan %q", result.Plan)
		}
		sub.ApplyPlan(p)
		changed = true
	}
	if result.Status != "" && result.Status != sub.Status {
		sub.Status = result.Status
		changed = true
	}

	if changed {
		if err := store.PutSubscription(ctx, sub); err != nil {
			return nil, fmt.Errorf("storing subscription: %w", err)
		}
	}
	return sub, nil
}
