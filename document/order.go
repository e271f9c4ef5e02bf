package document

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// OrderBy is the defined order of a query. Ties are broken by document ID so
// that every source yields a total order and cursors are unambiguous.
type OrderBy struct {
	Field      string `json:"field" mapstructure:"field"`
	Descending bool   `json:"descending" mapstructure:"descending"`
}

// ByID orders documents by their identifier only.
var ByID = OrderBy{}

// Value returns the ordering key of d. An empty field orders by ID.
func (o OrderBy) Value(d Document) any {
	if o.Field == "" {
		return d.ID
	}
	v, _ := d.Get(o.Field)
	return v
}

// Compare orders a before b (negative), after b (positive) or equal (zero).
func (o OrderBy) Compare(a, b Document) int {
	c := 0
	if o.Field != "" {
		c = Compare(o.Value(a), o.Value(b))
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if o.Descending {
		return -c
	}
	return c
}

// Sort sorts docs in place.
func (o OrderBy) Sort(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return o.Compare(docs[i], docs[j]) < 0
	})
}

// Window returns up to limit documents from sorted docs that come strictly
// after the cursor. A nil cursor starts at the beginning. The cursor does not
// need to be present in docs.
func (o OrderBy) Window(sorted []Document, after *Document, limit int) []Document {
	start := 0
	if after != nil {
		start = sort.Search(len(sorted), func(i int) bool {
			return o.Compare(sorted[i], *after) > 0
		})
	}
	end := len(sorted)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]Document, end-start)
	copy(out, sorted[start:end])
	return out
}

// kind ranks value kinds so mixed-type fields still order deterministically.
func kind(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case string:
		return 3
	case time.Time:
		return 4
	}
	if _, ok := toFloat(v); ok {
		return 2
	}
	return 5
}

// Compare orders two field values: nil < bool < number < string < time < other.
func Compare(a, b any) int {
	ka, kb := kind(a), kind(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch ka {
	case 0:
		return 0
	case 1:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	case 4:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
