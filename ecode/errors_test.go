package ecode

import "testing"

func TestMessages(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{FieldIsEmpty("collection"), "collection empty"},
		{FieldIsRequired("uri"), "uri required"},
		{FieldIsInvalid("page_size"), "page_size invalid"},
		{Failed("fetch"), "fetch failed"},
		{NotExist("document a"), "document a does not exist"},
		{Closed("paginator"), "paginator closed"},
		{Closed(), "closed"},
		{FieldIsInvalid(""), "invalid"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}
