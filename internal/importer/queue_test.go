package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
)

func TestQueue_UpdatesByIDOutOfOrder(t *testing.T) {
	q := NewQueue()
	a := q.Add("a.pdf", constants.DocContract, nil)
	b := q.Add("b.pdf", constants.DocContract, nil)
	c := q.Add("c.pdf", constants.DocContract, nil)

	// completions arrive in reverse order
	require.NoError(t, q.Set(c, Ready{Payload: &extraction.Payload{Filename: "c.pdf"}}))
	require.NoError(t, q.Set(a, Failed{Message: "empty document"}))
	require.NoError(t, q.Set(b, Ready{Payload: &extraction.Payload{Filename: "b.pdf"}}))

	items := q.List()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, []string{items[0].Filename, items[1].Filename, items[2].Filename})
	assert.Equal(t, "error", items[0].State.Name())
	assert.Equal(t, "b.pdf", items[1].State.(Ready).Payload.Filename)
	assert.Equal(t, "c.pdf", items[2].State.(Ready).Payload.Filename)

	batch := q.Batch()
	require.Len(t, batch, 2)
	assert.Equal(t, b, batch[0].ID)
	assert.Equal(t, c, batch[1].ID)
}

func TestQueue_SelectAndUnknown(t *testing.T) {
	q := NewQueue()
	id := q.Add("a.pdf", constants.DocContract, nil)
	require.NoError(t, q.Set(id, Ready{}))
	require.NoError(t, q.Select(id, false))
	assert.False(t, q.Batch()[0].Selected)

	assert.True(t, errors.Is(q.Set("missing", Done{}), ErrUnknownItem))
	assert.True(t, errors.Is(q.Select("missing", true), ErrUnknownItem))
	_, ok := q.Get("missing")
	assert.False(t, ok)
}

func TestQueue_Unsubscribe(t *testing.T) {
	q := NewQueue()
	calls := 0
	cancel := q.Subscribe(func(Update) { calls++ })
	id := q.Add("a.pdf", constants.DocContract, nil)
	cancel()
	require.NoError(t, q.Set(id, Importing{}))
	assert.Equal(t, 1, calls)
}

func TestQueue_ClaimMovesSelectedToImporting(t *testing.T) {
	q := NewQueue()
	a := q.Add("a.pdf", constants.DocContract, nil)
	b := q.Add("b.pdf", constants.DocContract, nil)
	require.NoError(t, q.Set(a, Ready{}))
	require.NoError(t, q.Set(b, Ready{}))
	require.NoError(t, q.Select(b, false))

	first := q.Claim()
	require.Len(t, first, 2)
	assert.True(t, first[0].Selected)
	assert.False(t, first[1].Selected)

	got, _ := q.Get(a)
	assert.IsType(t, Importing{}, got.State)
	got, _ = q.Get(b)
	assert.IsType(t, Ready{}, got.State)

	second := q.Claim()
	require.Len(t, second, 1)
	assert.Equal(t, b, second[0].ID)
	assert.False(t, second[0].Selected)
}
