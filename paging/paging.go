package paging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/ncobase/docpage/document"
)

// Params holds the unified pagination parameters
type Params struct {
	Cursor string `json:"cursor"`
	Limit  int    `json:"limit"`
}

// Result holds the pagination result
type Result[T any] struct {
	Items       []T    `json:"items"`
	NextCursor  string `json:"next,omitempty"`
	HasNextPage bool   `json:"has_next"`
}

// NormalizeParams ensures that Limit is within an acceptable range
func NormalizeParams(params Params) Params {
	if params.Limit <= 0 || params.Limit > 1024 {
		params.Limit = 256
	}
	return params
}

// cursorToken is the wire form of a cursor: the document id plus the value of
// the order field, tagged so timestamps survive the round trip.
type cursorToken struct {
	ID    string          `json:"id"`
	Field string          `json:"f,omitempty"`
	Kind  string          `json:"k,omitempty"`
	Value json.RawMessage `json:"v,omitempty"`
}

// EncodeCursor encodes the position of d under order as an opaque token
func EncodeCursor(d document.Document, order document.OrderBy) (string, error) {
	tok := cursorToken{ID: d.ID, Field: order.Field}
	if order.Field != "" {
		v := order.Value(d)
		if t, ok := v.(time.Time); ok {
			tok.Kind = "time"
			v = t.Format(time.RFC3339Nano)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("paging: encode cursor: %w", err)
		}
		tok.Value = raw
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("paging: encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a cursor token into a document usable as PageRequest.After.
// An empty token decodes to nil.
func DecodeCursor(cursor string) (*document.Document, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var tok cursorToken
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if tok.ID == "" {
		return nil, ErrInvalidCursor
	}

	d := document.Document{ID: tok.ID}
	if tok.Field == "" {
		return &d, nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(tok.Value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	v = document.Normalize(v)
	if tok.Kind == "time" {
		s, _ := v.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		v = t
	}
	d.Fields = document.Fields{tok.Field: v}
	return &d, nil
}

// FetchOnce issues a one-shot request and returns its single batch.
func FetchOnce(ctx context.Context, src document.Source, req document.PageRequest) ([]document.Document, error) {
	req.Live = false
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := src.FetchPage(ctx, req)
	if err != nil {
		return nil, err
	}
	select {
	case b, ok := <-stream:
		if !ok {
			return nil, ErrStreamClosed
		}
		return b.Documents, b.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Paginate serves one page over src using an opaque cursor. It fetches one
// extra document to learn whether a next page exists.
func Paginate[T any](ctx context.Context, src document.Source, params Params, order document.OrderBy, decode Decoder[T]) (*Result[T], error) {
	params = NormalizeParams(params)
	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	docs, err := FetchOnce(ctx, src, document.PageRequest{Limit: params.Limit + 1, After: after})
	if err != nil {
		return nil, fmt.Errorf("pagination error: %w", err)
	}

	hasNextPage := false
	if len(docs) > params.Limit {
		hasNextPage = true
		docs = docs[:params.Limit]
	}

	items := make([]T, len(docs))
	for i, d := range docs {
		items[i] = decode(d)
	}

	result := &Result[T]{Items: items, HasNextPage: hasNextPage}
	if hasNextPage {
		next, err := EncodeCursor(docs[len(docs)-1], order)
		if err != nil {
			return nil, err
		}
		result.NextCursor = next
	}
	return result, nil
}

// All walks src page by page with one-shot fetches, stopping after the first
// short page.
func All(ctx context.Context, src document.Source, pageSize int) iter.Seq2[document.Document, error] {
	return func(yield func(document.Document, error) bool) {
		var after *document.Document
		for {
			if err := ctx.Err(); err != nil {
				yield(document.Document{}, err)
				return
			}

			docs, err := FetchOnce(ctx, src, document.PageRequest{Limit: pageSize, After: after})
			if err != nil {
				yield(document.Document{}, err)
				return
			}

			for _, d := range docs {
				if !yield(d, nil) {
					return
				}
			}

			if len(docs) < pageSize {
				return
			}
			last := docs[len(docs)-1]
			after = &last
		}
	}
}

// FetchAll collects every document of src.
func FetchAll(ctx context.Context, src document.Source, pageSize int) ([]document.Document, error) {
	var out []document.Document
	for d, err := range All(ctx, src, pageSize) {
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}
