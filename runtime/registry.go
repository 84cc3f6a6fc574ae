// Package runtime wires sessions, registry, broadcast, and shutdown together.
// It orchestrates the chat room without containing wire or UI logic.
package runtime

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/samber/lo"

	"chat-room/contract"
	"chat-room/errors"
)

// shardCount spreads identities over independent locks so that registration
// or removal of one user never contends with broadcasts touching others.
const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	entries map[string]contract.Outbox
}

// Registry is the concurrent identity -> outbox mapping.
// Locks are per shard and never held across I/O.
type Registry struct {
	shards [shardCount]*shard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{entries: make(map[string]contract.Outbox)}
	}
	return r
}

func (r *Registry) shardFor(name string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return r.shards[h.Sum32()%shardCount]
}

// Register inserts a new identity. The entry is visible to broadcasts and
// roster queries as soon as Register returns.
func (r *Registry) Register(name string, out contract.Outbox) error {
	s := r.shardFor(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return errors.ErrDuplicateIdentity
	}
	s.entries[name] = out
	return nil
}

// Deregister removes an identity if present. Idempotent.
func (r *Registry) Deregister(name string) bool {
	s := r.shardFor(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return false
	}
	delete(s.entries, name)
	return true
}

func (r *Registry) Get(name string) (contract.Outbox, bool) {
	s := r.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.entries[name]
	return out, ok
}

// Snapshot captures a point-in-time copy of all entries. Each shard is
// consistent at the instant it is read; the result is never kept alive
// beyond one broadcast or list operation.
func (r *Registry) Snapshot() []contract.Entry {
	var all []contract.Entry
	for _, s := range r.shards {
		s.mu.RLock()
		for name, out := range s.entries {
			all = append(all, contract.Entry{Name: name, Out: out})
		}
		s.mu.RUnlock()
	}
	return all
}

// ListSummaries returns the registered identities sorted lexicographically
// for deterministic client display.
func (r *Registry) ListSummaries() []string {
	names := lo.Map(r.Snapshot(), func(e contract.Entry, _ int) string {
		return e.Name
	})
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Clear drains every entry and returns them. Only the shutdown coordinator
// uses it: once Clear returns, no broadcast can reach the removed handles.
func (r *Registry) Clear() []contract.Entry {
	var all []contract.Entry
	for _, s := range r.shards {
		s.mu.Lock()
		for name, out := range s.entries {
			all = append(all, contract.Entry{Name: name, Out: out})
		}
		s.entries = make(map[string]contract.Outbox)
		s.mu.Unlock()
	}
	return all
}
