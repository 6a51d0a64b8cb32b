// Package entdriver implements storage.Driver over any SQL database ent
// supports, building every statement with ent's dialect-aware SQL builder.
package entdriver

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/subscription"
)

const (
	tableHistory       = "history"
	tableSubscriptions = "subscriptions"
)

var (
	historyColumns      = []string{"id", "user_id", "topic", "content", "created_at"}
	subscriptionColumns = []string{"id", "user_id", "plan", "status", "research_count", "monthly_limit", "period_start"}
)

// EntDriver provides storage operations using an ent SQL driver.
// It is database-agnostic and can be embedded by specific drivers.
type EntDriver struct {
	Driver *entsql.Driver
}

func (ed *EntDriver) builder() *entsql.DialectBuilder {
	return entsql.Dialect(ed.Driver.Dialect())
}

// Migrate creates the tables when they do not exist yet.
func (ed *EntDriver) Migrate(ctx context.Context) error {
	b := ed.builder()

	statements := []entsql.Querier{
		b.CreateTable(tableHistory).IfNotExists().
			Columns(
				b.Column("id").Type("varchar(36)").Attr("NOT NULL"),
				b.Column("user_id").Type("varchar(255)").Attr("NOT NULL"),
				b.Column("topic").Type("text").Attr("NOT NULL"),
				b.Column("content").Type("text").Attr("NOT NULL DEFAULT ''"),
				b.Column("created_at").Type("bigint").Attr("NOT NULL"),
			).
			PrimaryKey("id"),
		b.CreateTable(tableSubscriptions).IfNotExists().
			Columns(
				b.Column("id").Type("varchar(36)").Attr("NOT NULL"),
				b.Column("user_id").Type("varchar(255)").Attr("NOT NULL UNIQUE"),
				b.Column("plan").Type("varchar(32)").Attr("NOT NULL"),
				b.Column("status").Type("varchar(32)").Attr("NOT NULL"),
				b.Column("research_count").Type("integer").Attr("NOT NULL DEFAULT 0"),
				b.Column("monthly_limit").Type("integer").Attr("NOT NULL"),
				b.Column("period_start").Type("bigint").Attr("NOT NULL"),
			).
			PrimaryKey("id"),
	}

	for _, stmt := range statements {
		query, args := stmt.Query()
		if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Add inserts a history entry and prunes the user's list to history.MaxItems.
func (ed *EntDriver) Add(ctx context.Context, item *history.Item) error {
	if item == nil {
		return errors.New("cannot store nil history item")
	}

	b := ed.builder()
	query, args := b.Insert(tableHistory).
		Columns(historyColumns...).
		Values(item.ID.String(), item.UserID, item.Topic, item.Content, item.CreatedAt.UnixMilli()).
		Query()
	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("could not insert history item: %w", err)
	}

	return ed.prune(ctx, item.UserID)
}

func (ed *EntDriver) prune(ctx context.Context, userID string) error {
	b := ed.builder()
	query, args := b.Select("id").
		From(b.Table(tableHistory)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return fmt.Errorf("failed to list history ids: %w", err)
	}

	var overflow []any
	for n := 0; rows.Next(); n++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan history id: %w", err)
		}
		if n >= history.MaxItems {
			overflow = append(overflow, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to list history ids: %w", err)
	}
	rows.Close()

	if len(overflow) == 0 {
		return nil
	}

	query, args = b.Delete(tableHistory).Where(entsql.In("id", overflow...)).Query()
	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// List returns the user's entries newest first.
func (ed *EntDriver) List(ctx context.Context, userID string) ([]*history.Item, error) {
	b := ed.builder()
	query, args := b.Select(historyColumns...).
		From(b.Table(tableHistory)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(history.MaxItems).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	items := []*history.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return items, nil
}

// Get returns one of the user's entries.
func (ed *EntDriver) Get(ctx context.Context, userID string, id uuid.UUID) (*history.Item, error) {
	b := ed.builder()
	query, args := b.Select(historyColumns...).
		From(b.Table(tableHistory)).
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.EQ("user_id", userID),
		)).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to get history item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get history item: %w", err)
		}
		return nil, history.ErrNotFound
	}
	return scanItem(rows)
}

// SetContent stores the finished research text for an entry.
func (ed *EntDriver) SetContent(ctx context.Context, id uuid.UUID, content string) error {
	query, args := ed.builder().Update(tableHistory).
		Set("content", content).
		Where(entsql.EQ("id", id.String())).
		Query()

	return ed.execOne(ctx, query, args, history.ErrNotFound)
}

// Clear removes all of the user's entries.
func (ed *EntDriver) Clear(ctx context.Context, userID string) error {
	query, args := ed.builder().Delete(tableHistory).
		Where(entsql.EQ("user_id", userID)).
		Query()

	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// GetSubscription returns the user's subscription row.
func (ed *EntDriver) GetSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	b := ed.builder()
	query, args := b.Select(subscriptionColumns...).
		From(b.Table(tableSubscriptions)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get subscription: %w", err)
		}
		return nil, subscription.ErrNotFound
	}

	var (
		sub         subscription.Subscription
		plan        string
		periodStart int64
	)
	if err := rows.Scan(&sub.ID, &sub.UserID, &plan, &sub.Status, &sub.ResearchCount, &sub.MonthlyLimit, &periodStart); err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	sub.Plan = subscription.PlanID(plan)
	sub.PeriodStart = time.UnixMilli(periodStart).UTC()
	return &sub, nil
}

// PutSubscription upserts the user's subscription row.
func (ed *EntDriver) PutSubscription(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return errors.New("cannot store nil subscription")
	}

	id := sub.ID
	if id == "" {
		id = uuid.NewString()
	}

	query, args := ed.builder().Insert(tableSubscriptions).
		Columns(subscriptionColumns...).
		Values(id, sub.UserID, string(sub.Plan), sub.Status, sub.ResearchCount, sub.MonthlyLimit, sub.PeriodStart.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("could not store subscription: %w", err)
	}
	return nil
}

// IncrementResearchCount adds one to the user's count.
func (ed *EntDriver) IncrementResearchCount(ctx context.Context, userID string) error {
	query, args := ed.builder().Update(tableSubscriptions).
		Add("research_count", 1).
		Where(entsql.EQ("user_id", userID)).
		Query()

	return ed.execOne(ctx, query, args, subscription.ErrNotFound)
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}

// execOne runs a statement that must touch at least one row, returning
// notFound otherwise.
func (ed *EntDriver) execOne(ctx context.Context, query string, args []any, notFound error) error {
	var res stdsql.Result
	if err := ed.Driver.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("could not execute update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func scanItem(rows *entsql.Rows) (*history.Item, error) {
	var (
		item      history.Item
		id        string
		createdAt int64
	)
	if err := rows.Scan(&id, &item.UserID, &item.Topic, &item.Content, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan history item: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid history id %q: %w", id, err)
	}
	item.ID = parsed
	item.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &item, nil
}
