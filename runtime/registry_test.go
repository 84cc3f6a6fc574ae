package runtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-room/errors"
)

func TestRegistry_Register_One_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	name := uuid.NewString()
	handle := NewHandle(1)

	// Given an empty registry
	req.Zero(registry.Len())

	// When an identity registers
	req.NoError(registry.Register(name, handle))

	// Then it is immediately visible to lookups and snapshots
	out, ok := registry.Get(name)
	req.True(ok)
	req.Same(handle, out)
	req.Equal(1, registry.Len())
	req.Equal([]string{name}, registry.ListSummaries())
}

func TestRegistry_Register_Duplicate_Keeps_Original(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	name := uuid.NewString()
	original := NewHandle(1)

	// Given an identity is registered
	req.NoError(registry.Register(name, original))

	// When the same identity claims again
	err := registry.Register(name, NewHandle(1))

	// Then the claim is rejected and the original entry survives
	req.ErrorIs(err, errors.ErrDuplicateIdentity)
	out, ok := registry.Get(name)
	req.True(ok)
	req.Same(original, out)
	req.Equal(1, registry.Len())
}

func TestRegistry_Deregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	name := uuid.NewString()

	// Given a registered identity
	req.NoError(registry.Register(name, NewHandle(1)))

	// When it deregisters twice
	// Then only the first removal reports work done
	req.True(registry.Deregister(name))
	req.False(registry.Deregister(name))

	// And the identity is gone from summaries
	req.NotContains(registry.ListSummaries(), name)
}

func TestRegistry_ListSummaries_Is_Sorted(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given identities registered out of order
	for _, name := range []string{"carol", "alice", "bob"} {
		req.NoError(registry.Register(name, NewHandle(1)))
	}

	// Then summaries come back lexicographically sorted
	req.Equal([]string{"alice", "bob", "carol"}, registry.ListSummaries())
}

func TestRegistry_Concurrent_Distinct_Identities(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	const users = 64

	// When many distinct identities register and deregister concurrently
	wg := sync.WaitGroup{}
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%03d", i)
			req.NoError(registry.Register(name, NewHandle(1)))
			if i%2 == 0 {
				req.True(registry.Deregister(name))
			}
		}(i)
	}
	wg.Wait()

	// Then exactly the odd half remains, with no duplicates
	names := registry.ListSummaries()
	req.Len(names, users/2)
	seen := map[string]struct{}{}
	for _, n := range names {
		_, dup := seen[n]
		req.False(dup, "duplicate entry %s", n)
		seen[n] = struct{}{}
	}
}

func TestRegistry_Concurrent_Same_Identity_Single_Winner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	name := uuid.NewString()
	const claims = 16

	// When the same identity is claimed concurrently
	wins := make(chan error, claims)
	wg := sync.WaitGroup{}
	for i := 0; i < claims; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- registry.Register(name, NewHandle(1))
		}()
	}
	wg.Wait()
	close(wins)

	// Then exactly one claim wins
	succeeded := 0
	for err := range wins {
		if err == nil {
			succeeded++
		} else {
			req.ErrorIs(err, errors.ErrDuplicateIdentity)
		}
	}
	req.Equal(1, succeeded)
	req.Equal(1, registry.Len())
}

func TestRegistry_Clear_Drains_Everything(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given three registered identities
	for _, name := range []string{"alice", "bob", "carol"} {
		req.NoError(registry.Register(name, NewHandle(1)))
	}

	// When the registry is cleared
	entries := registry.Clear()

	// Then all entries are returned and nothing remains visible
	req.Len(entries, 3)
	req.Zero(registry.Len())
	req.Empty(registry.ListSummaries())
}
