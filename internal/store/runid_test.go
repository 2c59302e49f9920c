package store

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	ids := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("run-1", "run-2")

	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.PanicsWithValue(t, "SequenceGenerator: all ids exhausted", func() { gen.Generate() })
}
