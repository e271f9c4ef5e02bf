package firestore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/type/latlng"
)

func TestToDocument(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d := toDocument("a", map[string]any{
		"n":    int64(2),
		"at":   at,
		"geo":  &latlng.LatLng{Latitude: 1.5, Longitude: -2},
		"list": []any{map[string]any{"x": true}},
	})

	assert.Equal(t, "a", d.ID)
	n, _ := d.Fields.Int64("n")
	assert.Equal(t, int64(2), n)
	ts, _ := d.Fields.Time("at")
	assert.True(t, at.Equal(ts))
	geo, ok := d.Fields.Map("geo")
	require.True(t, ok)
	lat, _ := geo.Float64("latitude")
	assert.Equal(t, 1.5, lat)
	list, _ := d.Fields.List("list")
	require.Len(t, list, 1)
	assert.Equal(t, map[string]any{"x": true}, list[0])
}

// emulatorClient connects to the emulator named by FIRESTORE_EMULATOR_HOST.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "docpage-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEmulatorPages(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	coll := fmt.Sprintf("pages_%d", time.Now().UnixNano())

	var docs []document.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, document.New(fmt.Sprintf("d%d", i), map[string]any{"rank": int64(i % 2)}))
	}
	require.NoError(t, Put(ctx, client, coll, docs...))

	src := New(client.Collection(coll), document.OrderBy{Field: "rank"})
	all, err := paging.FetchAll(ctx, src, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"d0", "d2", "d4", "d1", "d3"}, document.IDs(all))
}

func TestEmulatorLivePage(t *testing.T) {
	client := emulatorClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coll := fmt.Sprintf("live_%d", time.Now().UnixNano())
	require.NoError(t, Put(ctx, client, coll, document.New("a", map[string]any{"v": int64(1)})))

	src := New(client.Collection(coll), document.ByID)
	stream, err := src.FetchPage(ctx, document.PageRequest{Limit: 2, Live: true})
	require.NoError(t, err)

	b := <-stream
	require.NoError(t, b.Err)
	assert.Equal(t, []string{"a"}, document.IDs(b.Documents))

	require.NoError(t, Put(ctx, client, coll, document.New("b", nil)))
	select {
	case b = <-stream:
		require.NoError(t, b.Err)
		assert.Equal(t, []string{"a", "b"}, document.IDs(b.Documents))
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot")
	}

	cancel()
	for range stream {
	}
}
