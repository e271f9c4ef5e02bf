package paging

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ncobase/docpage/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource serves one-shot pages over a fixed, ordered slice.
func sliceSource(order document.OrderBy, docs ...document.Document) document.Source {
	sorted := append([]document.Document(nil), docs...)
	order.Sort(sorted)
	return document.SourceFunc(func(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		return document.Once(order.Window(sorted, req.After, req.Limit), nil), nil
	})
}

func TestNormalizeParams(t *testing.T) {
	assert.Equal(t, 256, NormalizeParams(Params{}).Limit)
	assert.Equal(t, 256, NormalizeParams(Params{Limit: 5000}).Limit)
	assert.Equal(t, 10, NormalizeParams(Params{Limit: 10}).Limit)
}

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	cases := []struct {
		name  string
		order document.OrderBy
		doc   document.Document
		want  any
	}{
		{"by id", document.ByID, doc("a"), nil},
		{"int", document.OrderBy{Field: "rank"}, doc("b", "rank", 7), int64(7)},
		{"float", document.OrderBy{Field: "score"}, doc("c", "score", 1.25), 1.25},
		{"string", document.OrderBy{Field: "name"}, doc("d", "name", "ada"), "ada"},
		{"time", document.OrderBy{Field: "at"}, doc("e", "at", ts), ts},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tok, err := EncodeCursor(c.doc, c.order)
			require.NoError(t, err)

			got, err := DecodeCursor(tok)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, c.doc.ID, got.ID)
			if c.want == nil {
				assert.Nil(t, got.Fields)
				return
			}
			v, _ := got.Get(c.order.Field)
			if ts, ok := c.want.(time.Time); ok {
				assert.True(t, ts.Equal(v.(time.Time)))
				return
			}
			assert.Equal(t, c.want, v)
		})
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	got, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = DecodeCursor("!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor("e30") // {}
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestPaginate(t *testing.T) {
	order := document.OrderBy{Field: "rank"}
	var docs []document.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, doc(fmt.Sprintf("d%d", i), "rank", i))
	}
	src := sliceSource(order, docs...)
	ctx := context.Background()

	page, err := Paginate(ctx, src, Params{Limit: 2}, order, Documents)
	require.NoError(t, err)
	assert.Equal(t, []string{"d0", "d1"}, document.IDs(page.Items))
	assert.True(t, page.HasNextPage)
	require.NotEmpty(t, page.NextCursor)

	page, err = Paginate(ctx, src, Params{Limit: 2, Cursor: page.NextCursor}, order, Documents)
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d3"}, document.IDs(page.Items))

	page, err = Paginate(ctx, src, Params{Limit: 2, Cursor: page.NextCursor}, order, Documents)
	require.NoError(t, err)
	assert.Equal(t, []string{"d4"}, document.IDs(page.Items))
	assert.False(t, page.HasNextPage)
	assert.Empty(t, page.NextCursor)
}

func TestPaginateSourceError(t *testing.T) {
	cause := errors.New("down")
	src := document.SourceFunc(func(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
		return document.Once(nil, cause), nil
	})
	_, err := Paginate(context.Background(), src, Params{Limit: 2}, document.ByID, Documents)
	assert.ErrorIs(t, err, cause)
}

func TestFetchAll(t *testing.T) {
	var docs []document.Document
	for i := 0; i < 7; i++ {
		docs = append(docs, doc(fmt.Sprintf("d%d", i)))
	}
	calls := 0
	inner := sliceSource(document.ByID, docs...)
	src := document.SourceFunc(func(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
		calls++
		assert.False(t, req.Live)
		return inner.FetchPage(ctx, req)
	})

	all, err := FetchAll(context.Background(), src, 3)
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, 3, calls)
}

func TestFetchOnceClosedStream(t *testing.T) {
	src := document.SourceFunc(func(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
		ch := make(chan document.Batch)
		close(ch)
		return ch, nil
	})
	_, err := FetchOnce(context.Background(), src, document.PageRequest{Limit: 1})
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestHubCoalescesLists(t *testing.T) {
	h := newHub[int](0)
	s := h.subscribe()

	h.publish(Update[int]{Items: []int{1}})
	h.publish(Update[int]{Items: []int{1, 2}})
	boom := errors.New("boom")
	h.publish(Update[int]{Err: boom})
	h.publish(Update[int]{Items: []int{1, 2, 3}})

	var got []Update[int]
	deadline := time.After(waitTimeout)
	for len(got) == 0 || got[len(got)-1].Err != nil || len(got[len(got)-1].Items) != 3 {
		select {
		case u := <-s.C():
			got = append(got, u)
		case <-deadline:
			t.Fatalf("timed out, got %v", got)
		}
	}

	sawErr := false
	for _, u := range got {
		if u.Err != nil {
			sawErr = true
			assert.ErrorIs(t, u.Err, boom)
		}
	}
	assert.True(t, sawErr, "error updates must not be dropped")

	h.close()
	_, ok := <-s.C()
	assert.False(t, ok)
}

func TestHubSubscriberClose(t *testing.T) {
	h := newHub[int](1)
	a := h.subscribe()
	b := h.subscribe()
	assert.Equal(t, 2, h.len())

	a.Close()
	assert.Equal(t, 1, h.len())
	h.publish(Update[int]{Items: []int{1}})

	select {
	case u := <-b.C():
		assert.Equal(t, []int{1}, u.Items)
	case <-time.After(waitTimeout):
		t.Fatal("timed out")
	}
	h.close()
}
