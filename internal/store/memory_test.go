package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Insert(ctx, activity(fmt.Sprintf("a%d", i%25), base, "x"))
		}(i)
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seed(t, s, activity("a1", base, "x"))

	page, err := s.List(ctx, ListQuery{Limit: 10})
	require.NoError(t, err)
	page.Items[0].Address = "mutated"

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Address)
}
