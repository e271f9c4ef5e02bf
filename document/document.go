// Package document defines the document value shared by every source and the
// DocumentSource capability the pagination engine consumes.
//
// A Document is an identifier plus a dynamic field map. Documents are treated
// as immutable values: a later batch may deliver a new Fields value for an
// existing ID, but the ID itself never changes.
//
// # Sources
//
// A Source answers bounded, cursor-seeked page requests:
//
//	ch, err := src.FetchPage(ctx, document.PageRequest{
//	    Limit: 20,
//	    After: last, // nil for the first page
//	    Live:  true,
//	})
//	for batch := range ch {
//	    if batch.Err != nil {
//	        // stream is over
//	    }
//	}
//
// One-shot requests yield exactly one batch. Live requests yield an initial
// batch and then one batch per change to the page window until ctx is done.
package document

// Document is a single record returned by a source.
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields,omitempty"`
}

// New creates a document, copying the given fields.
func New(id string, fields map[string]any) Document {
	return Document{ID: id, Fields: Fields(fields).Clone()}
}

// Get returns the value stored under key.
func (d Document) Get(key string) (any, bool) {
	if d.Fields == nil {
		return nil, false
	}
	v, ok := d.Fields[key]
	return v, ok
}

// WithFields returns a copy of d carrying the given fields.
func (d Document) WithFields(fields map[string]any) Document {
	return Document{ID: d.ID, Fields: Fields(fields).Clone()}
}

// Equal reports whether two documents carry the same id and field values.
func (d Document) Equal(o Document) bool {
	if d.ID != o.ID || len(d.Fields) != len(o.Fields) {
		return false
	}
	for k, v := range d.Fields {
		ov, ok := o.Fields[k]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

// IDs returns the ids of docs in order.
func IDs(docs []Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

// EqualSlices reports whether a and b hold equal documents in the same order.
func EqualSlices(a, b []Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
