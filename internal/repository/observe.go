package repository

import (
	"context"

	"kosh/internal/logger"
	"kosh/internal/watch"
)

// Table names used for change notification.
const (
	tableUsers        = "users"
	tableCategories   = "categories"
	tableTransactions = "transactions"
	tableBudgets      = "budgets"
	tableReminders    = "reminders"
	tableNotes        = "notes"
	tableSettings     = "settings"
)

// observe runs query once immediately and again after every change signal
// for the given tables, pushing each result to the returned channel. Stale
// unread snapshots are replaced rather than queued. The channel is closed
// when ctx is cancelled; the stream never terminates on its own.
func observe[T any](ctx context.Context, broker *watch.Broker, tables []string, query func(context.Context) (T, error)) <-chan T {
	out := make(chan T, 1)
	signals := broker.Subscribe(ctx, tables...)

	emit := func() {
		result, err := query(ctx)
		if err != nil {
			// A failed re-query skips the emission; the next change retries.
			logger.Get().Warnw("observe query failed", "tables", tables, "error", err)
			return
		}
		select {
		case <-out:
		default:
		}
		select {
		case out <- result:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(out)
		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return out
}
