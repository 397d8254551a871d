package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pfms/internal/amqp"
	"pfms/internal/cache"
	"pfms/internal/core"
	applog "pfms/internal/log"
)

type consumer interface {
	ConsumeBudgetAlerts(ctx context.Context, handler func(context.Context, *amqp.BudgetAlertMessage) error) error
	Close() error
}

type usernameResolver interface {
	ResolveUsername(ctx context.Context, id int64) (string, error)
}

// cachedUsernames remembers resolved usernames so a burst of alerts for one
// user hits the database once. Unknown ids are not cached.
type cachedUsernames struct {
	next  usernameResolver
	names *cache.LRU[int64, string]
}

func newCachedUsernames(next usernameResolver, size int, ttl time.Duration) *cachedUsernames {
	return &cachedUsernames{next: next, names: cache.NewLRU[int64, string](size, ttl)}
}

func (c *cachedUsernames) ResolveUsername(ctx context.Context, id int64) (string, error) {
	if name, ok := c.names.Get(id); ok {
		return name, nil
	}
	name, err := c.next.ResolveUsername(ctx, id)
	if err != nil {
		return name, err
	}
	c.names.Set(id, name)
	return name, nil
}

type notifier struct {
	accounts usernameResolver // optional, for usernames in log lines
	logger   *applog.Logger
	sleep    func(context.Context, time.Duration) error
}

func (n *notifier) handle(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	// A failed lookup still logs and acks the alert; requeueing would only
	// redeliver it while the database stays unavailable.
	username := core.UnknownUsername
	if n.accounts != nil {
		name, err := n.accounts.ResolveUsername(ctx, msg.UserID)
		switch {
		case err == nil:
			username = name
		case !errors.Is(err, core.ErrNotFound):
			n.logger.ErrorContext(ctx, "Failed to resolve username",
				applog.FieldUserID, msg.UserID,
				applog.FieldError, err)
		}
	}

	n.logger.WarnContext(ctx, "Budget exceeded",
		append(applog.NewFields().
			WithOperation(applog.OpAlert).
			WithUser(msg.UserID).
			WithBudget(msg.Category, msg.Limit, msg.Spent).
			ToSlice(),
			applog.FieldUsername, username,
			applog.FieldMessageID, msg.ID,
			"overspend", fmt.Sprintf("%.2f", msg.Overspend()))...)
	return nil
}

// run consumes until ctx is done, redialing with exponential backoff
// whenever the broker connection drops.
func (n *notifier) run(ctx context.Context, dial func() (consumer, error)) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil
		}

		c, err := dial()
		if err == nil {
			attempt = 0
			err = c.ConsumeBudgetAlerts(ctx, n.handle)
			c.Close()
			if ctx.Err() != nil {
				return nil
			}
		}

		wait := amqp.ExponentialBackoff(attempt)
		n.logger.WarnContext(ctx, "Alert consumer stopped, reconnecting",
			applog.FieldError, err,
			"retry_in", wait.String())
		if err := n.sleep(ctx, wait); err != nil {
			return nil
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
