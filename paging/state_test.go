package paging

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ncobase/docpage/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeReplacesInPlace(t *testing.T) {
	st := newPageState[document.Document]()
	st.merge([]document.Document{doc("a", "v", 1), doc("b", "v", 1)}, Documents)
	updated, appended := st.merge([]document.Document{doc("c"), doc("a", "v", 2)}, Documents)

	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, appended)
	assert.Equal(t, []string{"a", "b", "c"}, document.IDs(st.items))
	v, _ := st.values[0].Fields.Int64("v")
	assert.Equal(t, int64(2), v)
}

func TestMergeDuplicateWithinBatch(t *testing.T) {
	st := newPageState[document.Document]()
	st.merge([]document.Document{doc("a", "v", 1), doc("b"), doc("a", "v", 2)}, Documents)

	assert.Equal(t, []string{"a", "b"}, document.IDs(st.items))
	v, _ := st.items[0].Fields.Int64("v")
	assert.Equal(t, int64(2), v)
}

func TestMergeIdempotent(t *testing.T) {
	batch := []document.Document{doc("a", "v", 1), doc("b", "v", 2), doc("c", "v", 3)}

	once := newPageState[document.Document]()
	once.merge(batch, Documents)

	twice := newPageState[document.Document]()
	twice.merge(batch, Documents)
	twice.merge(batch, Documents)

	assert.True(t, document.EqualSlices(once.items, twice.items))
}

func TestMergeNeverDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	st := newPageState[document.Document]()
	positions := map[string]int{}

	for round := 0; round < 200; round++ {
		n := rng.Intn(5)
		batch := make([]document.Document, n)
		for i := range batch {
			batch[i] = doc(fmt.Sprintf("d%d", rng.Intn(12)), "round", round)
		}
		st.merge(batch, Documents)

		seen := map[string]bool{}
		for i, d := range st.items {
			require.False(t, seen[d.ID], "duplicate id %s", d.ID)
			seen[d.ID] = true
			if pos, ok := positions[d.ID]; ok {
				require.Equal(t, pos, i, "id %s moved", d.ID)
			}
			positions[d.ID] = i
		}
		require.Len(t, st.values, len(st.items))
	}
}

func TestAdvance(t *testing.T) {
	st := newPageState[document.Document]()
	st.loading = true
	st.advance([]document.Document{doc("a"), doc("b")}, 2)

	assert.False(t, st.loading)
	assert.False(t, st.exhausted)
	require.NotNil(t, st.after())
	assert.Equal(t, "b", st.after().ID)
	assert.Equal(t, StateIdle, st.state())

	st.advance(nil, 2)
	assert.True(t, st.exhausted)
	assert.Equal(t, "b", st.after().ID, "empty page keeps the cursor")
	assert.Equal(t, StateExhausted, st.state())
}
