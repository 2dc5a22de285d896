package gate

import (
	"context"
	"sync"
)

// MemoryCredentialStore keeps the access credential in process memory.
// It backs tests and embedded deployments; the browser client stores
// the same single value under one localStorage key.
type MemoryCredentialStore struct {
	mu         sync.Mutex
	credential string
	present    bool
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Load(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential, s.present
}

func (s *MemoryCredentialStore) Save(ctx context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	s.present = true
	return nil
}

func (s *MemoryCredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	s.present = false
	return nil
}
