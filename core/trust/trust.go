// Package trust implements trust-on-first-use pinning of client
// certificate fingerprints.
//
// The first certificate seen for a name is remembered; later connections
// under that name are trusted only if they present the same certificate.
//
//	store := trust.NewMemoryStore()
//	verdict, err := trust.Check(ctx, store, "alice", fingerprint)
//	switch verdict {
//	case trust.FirstUse, trust.Trusted:
//		// welcome
//	case trust.Mismatch:
//		// someone else is using the name
//	}
package trust

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
)

var (
	ErrUnknown       = errors.New("no fingerprint pinned for name")
	ErrNoCertificate = errors.New("client did not present a certificate")
)

// Store persists pinned fingerprints.
type Store interface {
	// Lookup returns the pinned fingerprint or ErrUnknown.
	Lookup(ctx context.Context, name string) (string, error)
	// Remember pins fingerprint unless name is already pinned and reports
	// whether it did.
	Remember(ctx context.Context, name, fingerprint string) (bool, error)
	// Forget removes a pin.
	Forget(ctx context.Context, name string) error
}

// Verdict is the outcome of Check.
type Verdict int

const (
	Unchecked Verdict = iota
	FirstUse
	Trusted
	Mismatch
)

func (v Verdict) String() string {
	switch v {
	case FirstUse:
		return "first-use"
	case Trusted:
		return "trusted"
	case Mismatch:
		return "mismatch"
	default:
		return "unchecked"
	}
}

// Check pins fingerprint for name on first use and compares it with the
// pinned value afterwards.
func Check(ctx context.Context, s Store, name, fingerprint string) (Verdict, error) {
	if fingerprint == "" {
		return Unchecked, ErrNoCertificate
	}

	pinned, err := s.Lookup(ctx, name)
	if errors.Is(err, ErrUnknown) {
		var stored bool
		stored, err = s.Remember(ctx, name, fingerprint)
		if err != nil {
			return Unchecked, err
		}
		if stored {
			return FirstUse, nil
		}
		// lost a race with another connection pinning the same name
		pinned, err = s.Lookup(ctx, name)
	}
	if err != nil {
		return Unchecked, err
	}

	if subtle.ConstantTimeCompare([]byte(pinned), []byte(fingerprint)) == 1 {
		return Trusted, nil
	}
	return Mismatch, nil
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pins map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pins: make(map[string]string)}
}

func (m *MemoryStore) Lookup(_ context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fp, ok := m.pins[name]
	if !ok {
		return "", ErrUnknown
	}
	return fp, nil
}

func (m *MemoryStore) Remember(_ context.Context, name, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pins[name]; ok {
		return false, nil
	}
	m.pins[name] = fingerprint
	return true, nil
}

func (m *MemoryStore) Forget(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pins, name)
	return nil
}
