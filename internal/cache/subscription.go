package cache

import "sync"

// Subscription marks a query as actively displayed. C receives a signal
// after every change to the query's state; signals coalesce, so a slow
// reader sees at most one pending notification.
type Subscription struct {
	key   QueryKey
	ch    chan struct{}
	store *Store
	once  sync.Once
}

// Subscribe registers interest in key
func (s *Store) Subscribe(key QueryKey) *Subscription {
	sub := &Subscription{
		key:   key,
		ch:    make(chan struct{}, 1),
		store: s,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[*Subscription]struct{})
	}
	s.subs[key][sub] = struct{}{}
	return sub
}

// Key returns the watched query
func (sub *Subscription) Key() QueryKey {
	return sub.key
}

// C receives one signal per burst of changes to the key; signals that
// arrive before the previous one is read are coalesced. C is closed by Close.
func (sub *Subscription) C() <-chan struct{} {
	return sub.ch
}

// Close detaches the subscription. Pending and future changes are dropped.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		s := sub.store
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[sub.key], sub)
		if len(s.subs[sub.key]) == 0 {
			delete(s.subs, sub.key)
		}
		close(sub.ch)
	})
}

// notify must be called with s.mu held.
func (s *Store) notify(key QueryKey) {
	for sub := range s.subs[key] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}
