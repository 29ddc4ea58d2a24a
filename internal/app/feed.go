package app

import (
	"sync"

	"quiz-grading-service/internal/domain"
)

const feedBuffer = 8

// Feed broadcasts freshly graded attempts to live subscribers (admin dashboards).
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Attempt]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan domain.Attempt]struct{})}
}

// Subscribe returns a channel of graded attempts.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *Feed) Subscribe() (<-chan domain.Attempt, func()) {
	ch := make(chan domain.Attempt, feedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish never blocks: a subscriber whose buffer is full loses its oldest attempt.
func (f *Feed) Publish(attempt domain.Attempt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- attempt:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- attempt
		}
	}
}

// Subscribers reports how many subscribers are connected.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
