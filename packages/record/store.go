package record

import "sync"

// Store is a sink for recorded exchanges.
type Store interface {
	// Append adds one exchange to the store.
	Append(exchange Exchange) error
	// Recent returns the most recent n exchanges in chronological order.
	// n <= 0 returns everything.
	Recent(n int) ([]Exchange, error)
	// Clear drops all stored exchanges.
	Clear() error
	// Close releases any resources held by the store.
	Close() error
}

// MemoryStore keeps exchanges in memory. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{exchanges: make([]Exchange, 0)}
}

func (s *MemoryStore) Append(exchange Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, exchange)
	return nil
}

func (s *MemoryStore) Recent(n int) ([]Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.exchanges) {
		n = len(s.exchanges)
	}
	result := make([]Exchange, n)
	copy(result, s.exchanges[len(s.exchanges)-n:])
	return result, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = make([]Exchange, 0)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
