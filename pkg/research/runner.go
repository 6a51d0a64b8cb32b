package research

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/sse"
	"github.com/papercomputeco/quire/pkg/subscription"
	"github.com/papercomputeco/quire/pkg/worker"
)

var (
	// ErrSignInRequired is returned when no user is signed in.
	ErrSignInRequired = errors.New("sign in required")

	// ErrEmptyTopic is returned for a blank topic.
	ErrEmptyTopic = errors.New("topic is required")
)

// Enqueuer accepts finished research for background storage.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Runner applies the account rules around a research request: a signed-in
// user, a plan with researches left, a history entry, and a usage count.
type Runner struct {
	Subscriptions subscription.Store
	History       history.Store

	// Jobs receives the finished research. When nil, or when the queue is
	// full, the content is stored before Run returns.
	Jobs Enqueuer

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Outcome is what Run produced.
type Outcome struct {
	Item         *history.Item
	Result       *Result
	Subscription *subscription.Subscription
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// Check returns the user's subscription when another research is allowed.
func (r *Runner) Check(ctx context.Context, user *auth.User) (*subscription.Subscription, error) {
	if user == nil {
		return nil, ErrSignInRequired
	}

	sub, err := subscription.Ensure(ctx, r.Subscriptions, user.ID, r.now())
	if err != nil {
		return nil, err
	}
	if err := subscription.Allow(sub); err != nil {
		return sub, err
	}
	return sub, nil
}

// Run researches topic for user through sess.
//
// The usage count is incremented once the stream ends whether or not it
// failed. A non-nil Outcome is returned with a stream error so callers can
// show the partial content.
func (r *Runner) Run(ctx context.Context, user *auth.User, sess *Session, topic string, onFragment func(sse.Fragment)) (*Outcome, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	sub, err := r.Check(ctx, user)
	if err != nil {
		return nil, err
	}

	if sess.Loading() {
		return nil, ErrBusy
	}

	item := history.NewItem(user.ID, topic, r.now())
	if err := r.History.Add(ctx, item); err != nil {
		return nil, err
	}

	result, streamErr := sess.Research(ctx, topic, onFragment)
	if result == nil {
		return nil, streamErr
	}

	// Usage counts even when the caller cancelled mid-stream.
	bg := context.WithoutCancel(ctx)
	if err := r.Subscriptions.IncrementResearchCount(bg, user.ID); err != nil {
		r.logger().Error("incrementing research count failed", "user_id", user.ID, "error", err)
	} else {
		sub.ResearchCount++
	}

	job := worker.Job{
		HistoryID: item.ID,
		UserID:    user.ID,
		Topic:     topic,
		Content:   result.Content,
		Fragments: result.Fragments,
		Bytes:     result.Bytes,
		Duration:  result.Duration,
		Err:       streamErr,
	}
	if r.Jobs == nil || !r.Jobs.Enqueue(job) {
		if err := r.History.SetContent(bg, item.ID, result.Content); err != nil {
			r.logger().Error("storing research content failed", "history_id", item.ID.String(), "error", err)
		}
	}
	item.Content = result.Content

	r.logger().Debug("research finished",
		"user_id", user.ID,
		"history_id", item.ID.String(),
		"fragments", result.Fragments,
		"duration", result.Duration,
	)

	return &Outcome{Item: item, Result: result, Subscription: sub}, streamErr
}
