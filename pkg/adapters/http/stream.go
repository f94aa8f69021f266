package http

import (
	"sync"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// StreamManager fans replies out to SSE subscribers, keyed by user.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[domain.UserID]map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[domain.UserID]map[chan<- string]struct{}),
	}
}

// Subscribe returns a buffered channel and its cancel func.
func (sm *StreamManager) Subscribe(userID domain.UserID) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[userID]; !ok {
		sm.subscribers[userID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[userID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[userID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, userID)
			}
		}
	}
}

// Broadcast delivers msg to every subscriber of userID. Slow clients drop messages.
func (sm *StreamManager) Broadcast(userID domain.UserID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[userID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions for userID.
func (sm *StreamManager) Subscribers(userID domain.UserID) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[userID])
}
