package authorizer

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex hands out one mutex per account ID. This is the single-node
// equivalent of the row lock the Postgres ledger takes; it keeps the credit
// check and the balance write of two concurrent transactions on the same
// account from interleaving.
//
// Entries are never evicted. One mutex per active account is cheap enough
// that eviction isn't worth the bookkeeping at this scale.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (k *keyedMutex) lock(id uuid.UUID) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
