package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection returns canned documents and records the last query.
type fakeCollection struct {
	docs     []any
	findErr  error
	watchErr error

	filter any
	opts   *options.FindOptions
}

func (c *fakeCollection) Name() string { return "items" }

func (c *fakeCollection) Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	c.filter = filter
	if len(opts) > 0 {
		c.opts = opts[0]
	}
	if c.findErr != nil {
		return nil, c.findErr
	}
	return mongo.NewCursorFromDocuments(c.docs, nil, nil)
}

func (c *fakeCollection) Watch(ctx context.Context, pipeline any, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error) {
	return nil, c.watchErr
}

func TestSort(t *testing.T) {
	s := New(&fakeCollection{}, document.OrderBy{Field: "score", Descending: true})
	assert.Equal(t, bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: -1}}, s.sort())

	s = New(&fakeCollection{}, document.ByID)
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, s.sort())
}

func TestSeekFilter(t *testing.T) {
	after := document.New("b", map[string]any{"score": int64(7)})

	s := New(&fakeCollection{}, document.OrderBy{Field: "score"})
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"score": bson.M{"$gt": int64(7)}},
		bson.M{"score": int64(7), "_id": bson.M{"$gt": "b"}},
	}}, s.seekFilter(&after))

	s = New(&fakeCollection{}, document.OrderBy{Descending: true})
	assert.Equal(t, bson.M{"_id": bson.M{"$lt": "b"}}, s.seekFilter(&after))
}

func TestSeekFilterObjectIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	after := document.New(oid.Hex(), nil)

	s := New(&fakeCollection{}, document.ByID, WithObjectIDs())
	assert.Equal(t, bson.M{"_id": bson.M{"$gt": oid}}, s.seekFilter(&after))
}

func TestQueryCombinesFilter(t *testing.T) {
	s := New(&fakeCollection{}, document.ByID, WithFilter(bson.M{"kind": "post"}))
	assert.Equal(t, bson.M{"kind": "post"}, s.query(nil))

	after := document.New("a", nil)
	assert.Equal(t, bson.M{"$and": bson.A{
		bson.M{"kind": "post"},
		bson.M{"_id": bson.M{"$gt": "a"}},
	}}, s.query(&after))

	s = New(&fakeCollection{}, document.ByID)
	assert.Equal(t, bson.M{}, s.query(nil))
}

func TestFetchPage(t *testing.T) {
	coll := &fakeCollection{docs: []any{
		bson.D{{Key: "_id", Value: "a"}, {Key: "score", Value: int32(1)}},
		bson.D{{Key: "_id", Value: "b"}, {Key: "score", Value: int32(2)}},
	}}
	s := New(coll, document.OrderBy{Field: "score"})
	assert.Equal(t, "mongodb:items", document.NameOf(s))

	docs, err := paging.FetchOnce(context.Background(), s, document.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, document.IDs(docs))
	score, _ := docs[1].Fields.Int64("score")
	assert.Equal(t, int64(2), score)

	require.NotNil(t, coll.opts)
	assert.Equal(t, int64(2), *coll.opts.Limit)
	assert.Equal(t, bson.M{}, coll.filter)
}

func TestFetchPageErrors(t *testing.T) {
	cause := errors.New("no primary")
	s := New(&fakeCollection{findErr: cause, watchErr: cause}, document.ByID)

	_, err := paging.FetchOnce(context.Background(), s, document.PageRequest{Limit: 1})
	assert.ErrorIs(t, err, cause)

	_, err = s.FetchPage(context.Background(), document.PageRequest{Limit: 1, Live: true})
	assert.ErrorIs(t, err, cause)

	_, err = s.FetchPage(context.Background(), document.PageRequest{})
	assert.ErrorIs(t, err, document.ErrInvalidLimit)

	require.NoError(t, s.Close())
	_, err = s.FetchPage(context.Background(), document.PageRequest{Limit: 1, Live: true})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestToDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	d := toDocument(bson.M{
		"_id":   oid,
		"n":     int32(3),
		"at":    primitive.NewDateTimeFromTime(at),
		"ref":   oid,
		"tags":  bson.A{"x", int32(1)},
		"inner": bson.D{{Key: "k", Value: primitive.Null{}}},
	})

	assert.Equal(t, oid.Hex(), d.ID)
	assert.False(t, d.Fields.Has("_id"))
	n, _ := d.Fields.Int64("n")
	assert.Equal(t, int64(3), n)
	ts, ok := d.Fields.Time("at")
	require.True(t, ok)
	assert.True(t, at.Equal(ts))
	ref, _ := d.Fields.String("ref")
	assert.Equal(t, oid.Hex(), ref)
	tags, _ := d.Fields.List("tags")
	assert.Equal(t, []any{"x", int64(1)}, tags)
	inner, _ := d.Fields.Map("inner")
	assert.True(t, inner.Has("k"))
}

func TestFromDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := FromDocument(document.New(oid.Hex(), map[string]any{"a": 1}), true)
	assert.Equal(t, oid, raw["_id"])

	raw = FromDocument(document.New("plain", nil), true)
	assert.Equal(t, "plain", raw["_id"])
}
