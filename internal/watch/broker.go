// Package watch provides an in-process table-change notifier. Repositories
// publish the tables they write; observers subscribe to the tables their
// query depends on and re-run it whenever a signal arrives.
package watch

import (
	"context"
	"sync"
)

type subscriber struct {
	tables map[string]struct{}
	signal chan struct{}
}

// Broker fans out table-change notifications to subscribers. Signals carry
// no payload and are coalesced: a subscriber that has not yet consumed a
// pending signal does not accumulate further ones.
type Broker struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscriber)}
}

// Notify signals every subscriber watching any of the given tables.
// It never blocks.
func (b *Broker) Notify(tables ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if !sub.watchesAny(tables) {
			continue
		}
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers interest in the given tables and returns a signal
// channel. The channel is closed and the subscription released when ctx is
// cancelled; the caller controls the subscription's lifetime.
func (b *Broker) Subscribe(ctx context.Context, tables ...string) <-chan struct{} {
	sub := &subscriber{
		tables: make(map[string]struct{}, len(tables)),
		signal: make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(sub.signal)
	}()

	return sub.signal
}

func (s *subscriber) watchesAny(tables []string) bool {
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}
