package broadcast

import "sync"

// Stream is a multi-subscriber broadcast of values of type T.
//
// Emit calls every subscriber in subscription order on the caller's goroutine.
// There is no buffering: a value emitted while nobody listens is gone, and
// channel subscribers that are not ready to receive miss it.
// After Close, Emit is a no-op and new subscriptions are inert.
type Stream[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber[T]
	closed bool
}

type subscriber[T any] struct {
	id      uint64
	fn      func(T)
	onClose func()
}

// New creates an open stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (s *Stream[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return s.add(fn, nil)
}

// Chan returns a channel receiving emitted values and a function that cancels
// the subscription. Sends never block: with a full buffer the value is dropped.
// The channel is closed when the subscription is cancelled or the stream closes.
func (s *Stream[T]) Chan(buffer int) (<-chan T, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan T, buffer)
	var (
		mu   sync.Mutex
		done bool
	)
	shut := func() {
		mu.Lock()
		defer mu.Unlock()
		if !done {
			done = true
			close(ch)
		}
	}
	send := func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		select {
		case ch <- v:
		default:
		}
	}

	unsubscribe := s.add(send, shut)
	return ch, func() {
		unsubscribe()
		shut()
	}
}

func (s *Stream[T]) add(fn func(T), onClose func()) func() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if onClose != nil {
			onClose()
		}
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn, onClose: onClose})
	s.mu.Unlock()

	return func() { s.remove(id) }
}

func (s *Stream[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers v to every current subscriber.
func (s *Stream[T]) Emit(v T) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Close ends the stream. Channel subscribers see their channel closed.
// Calling Close more than once has no effect.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.onClose != nil {
			sub.onClose()
		}
	}
}

// Closed reports whether Close has been called.
func (s *Stream[T]) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Len returns the number of active subscribers.
func (s *Stream[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
