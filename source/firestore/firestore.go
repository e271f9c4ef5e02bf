// Package firestore serves document pages from a Cloud Firestore collection.
//
// Live pages use Firestore query snapshots directly: every snapshot of the
// page query is the full, current window.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/ncobase/docpage/document"
	"google.golang.org/api/iterator"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Source reads pages from one collection or collection group query.
type Source struct {
	name  string
	base  firestore.Query
	order document.OrderBy
}

// New creates a source over the collection coll.
func New(coll *firestore.CollectionRef, order document.OrderBy) *Source {
	return &Source{name: coll.Path, base: coll.Query, order: order}
}

// NewQuery creates a source over an arbitrary base query, e.g. one with Where
// clauses. The query must not set its own order or limits.
func NewQuery(name string, q firestore.Query, order document.OrderBy) *Source {
	return &Source{name: name, base: q, order: order}
}

// Name implements document.Named.
func (s *Source) Name() string { return "firestore:" + s.name }

// Order returns the source order.
func (s *Source) Order() document.OrderBy { return s.order }

func (s *Source) direction() firestore.Direction {
	if s.order.Descending {
		return firestore.Desc
	}
	return firestore.Asc
}

// query builds the page query: order field, then document id, seeked after
// the cursor.
func (s *Source) query(after *document.Document, limit int) firestore.Query {
	q := s.base
	if s.order.Field != "" {
		q = q.OrderBy(s.order.Field, s.direction())
	}
	q = q.OrderBy(firestore.DocumentID, s.direction())
	if after != nil {
		if s.order.Field != "" {
			q = q.StartAfter(s.order.Value(*after), after.ID)
		} else {
			q = q.StartAfter(after.ID)
		}
	}
	return q.Limit(limit)
}

// FetchPage implements document.Source.
func (s *Source) FetchPage(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q := s.query(req.After, req.Limit)

	if !req.Live {
		snaps, err := q.Documents(ctx).GetAll()
		if err != nil {
			return nil, fmt.Errorf("firestore source: query: %w", err)
		}
		return document.Once(toDocuments(snaps), nil), nil
	}

	out := make(chan document.Batch, 1)
	go func() {
		defer close(out)
		it := q.Snapshots(ctx)
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return
				}
				document.Send(ctx, out, document.Batch{Err: fmt.Errorf("firestore source: snapshot: %w", err)})
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				document.Send(ctx, out, document.Batch{Err: fmt.Errorf("firestore source: snapshot: %w", err)})
				return
			}
			if !document.Send(ctx, out, document.Batch{Documents: toDocuments(snaps)}) {
				return
			}
		}
	}()
	return out, nil
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []document.Document {
	docs := make([]document.Document, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		docs = append(docs, toDocument(snap.Ref.ID, snap.Data()))
	}
	return docs
}

func toDocument(id string, data map[string]any) document.Document {
	fields := make(map[string]any, len(data))
	for k, v := range data {
		fields[k] = toValue(v)
	}
	return document.New(id, fields)
}

// toValue maps Firestore values onto the document variant kinds.
func toValue(v any) any {
	switch t := v.(type) {
	case *firestore.DocumentRef:
		if t == nil {
			return nil
		}
		return t.Path
	case *latlng.LatLng:
		if t == nil {
			return nil
		}
		return map[string]any{"latitude": t.GetLatitude(), "longitude": t.GetLongitude()}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toValue(e)
		}
		return out
	}
	return v
}

// Put writes documents with a bulk writer. Used to seed collections.
func Put(ctx context.Context, client *firestore.Client, coll string, docs ...document.Document) error {
	bw := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, d := range docs {
		job, err := bw.Set(client.Collection(coll).Doc(d.ID), map[string]any(d.Fields))
		if err != nil {
			bw.End()
			return fmt.Errorf("firestore source: put %s: %w", d.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("firestore source: put %s: %w", docs[i].ID, err)
		}
	}
	return nil
}
