// Package subscription tracks each user's plan and monthly research usage,
// and talks to the hosted billing functions.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StatusActive is the status of a subscription that may be used.
const StatusActive = "active"

var (
	// ErrNotFound is returned by a Store when the user has no subscription row.
	ErrNotFound = errors.New("subscription not found")

	// ErrLimitReached is returned when the monthly research limit is used up.
	ErrLimitReached = errors.New("monthly research limit reached")

	// ErrNotAuthenticated is returned by billing calls without a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidPlan is returned for plans that cannot be purchased.
	ErrInvalidPlan = errors.New("invalid plan")
)

// Subscription is a user's plan and usage for the current period.
type Subscription struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Plan          PlanID    `json:"plan"`
	Status        string    `json:"status"`
	ResearchCount int       `json:"research_count"`
	MonthlyLimit  int       `json:"monthly_limit"`
	PeriodStart   time.Time `json:"period_start"`
}

// CanResearch reports whether another research fits in the limit.
// A nil subscription cannot research.
func (s *Subscription) CanResearch() bool {
	if s == nil {
		return false
	}
	return s.ResearchCount < s.MonthlyLimit
}

// Remaining returns how many researches are left this period.
func (s *Subscription) Remaining() int {
	if s == nil || s.ResearchCount >= s.MonthlyLimit {
		return 0
	}
	return s.MonthlyLimit - s.ResearchCount
}

// ApplyPlan switches the subscription to plan p and its limit.
func (s *Subscription) ApplyPlan(p Plan) {
	s.Plan = p.ID
	s.MonthlyLimit = p.MonthlyLimit
}

// Store persists subscriptions keyed by user id.
type Store interface {
	// GetSubscription returns the user's row or ErrNotFound.
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)

	// PutSubscription inserts or replaces the user's row.
	PutSubscription(ctx context.Context, sub *Subscription) error

	// IncrementResearchCount adds one to the user's research count.
	IncrementResearchCount(ctx context.Context, userID string) error
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NewFree returns a free plan subscription starting in now's month.
func NewFree(userID string, now time.Time) *Subscription {
	free, _ := LookupPlan(PlanFree)
	sub := &Subscription{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      StatusActive,
		PeriodStart: MonthStart(now),
	}
	sub.ApplyPlan(free)
	return sub
}

// Ensure loads the user's subscription, creating a free one on first use
// and resetting the count when a new month has started.
func Ensure(ctx context.Context, store Store, userID string, now time.Time) (*Subscription, error) {
	sub, err := store.GetSubscription(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		sub = NewFree(userID, now)
		if err := store.PutSubscription(ctx, sub); err != nil {
			return nil, fmt.Errorf("creating subscription: %w", err)
		}
		return sub, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading subscription: %w", err)
	}

	if month := MonthStart(now); sub.PeriodStart.Before(month) {
		sub.ResearchCount = 0
		sub.PeriodStart = month
		if err := store.PutSubscription(ctx, sub); err != nil {
			return nil, fmt.Errorf("resetting subscription period: %w", err)
		}
	}

	return sub, nil
}

// Allow returns ErrLimitReached when sub cannot research.
func Allow(sub *Subscription) error {
	if !sub.CanResearch() {
		return ErrLimitReached
	}
	return nil
}
