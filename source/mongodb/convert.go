package mongodb

import (
	"fmt"

	"github.com/ncobase/docpage/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDocument splits _id off a decoded BSON document and converts the rest to
// document field values.
func toDocument(raw bson.M) document.Document {
	id := idString(raw["_id"])
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = toValue(v)
	}
	return document.New(id, fields)
}

func idString(v any) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// toValue maps BSON values onto the document variant kinds.
func toValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return int64(t.T)
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		return t.String()
	case primitive.Binary:
		return t.Data
	case primitive.Null, primitive.Undefined:
		return nil
	case int32:
		return int64(t)
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toValue(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = toValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toValue(e)
		}
		return out
	}
	return v
}

// FromDocument converts d into a BSON document for inserts.
func FromDocument(d document.Document, objectIDs bool) bson.M {
	out := make(bson.M, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	if objectIDs {
		if oid, err := primitive.ObjectIDFromHex(d.ID); err == nil {
			out["_id"] = oid
			return out
		}
	}
	out["_id"] = d.ID
	return out
}
