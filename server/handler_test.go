package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/paging"
	"github.com/ncobase/docpage/source/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, src document.Source, order document.OrderBy) *gin.Engine {
	t.Helper()
	return NewRouter(NewHandler(src, order, nil), nil)
}

func get(t *testing.T, r http.Handler, target string) (*httptest.ResponseRecorder, paging.Result[document.Document]) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var res paging.Result[document.Document]
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	}
	return w, res
}

func TestListWalksPages(t *testing.T) {
	order := document.OrderBy{Field: "rank"}
	c := memory.New("docs", order)
	for i := 0; i < 5; i++ {
		c.Put(document.New(fmt.Sprintf("d%d", i), map[string]any{"rank": int64(4 - i)}))
	}
	r := newRouter(t, c, order)

	w, res := get(t, r, "/pages?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"d4", "d3"}, document.IDs(res.Items))
	require.True(t, res.HasNextPage)

	var ids []string
	ids = append(ids, document.IDs(res.Items)...)
	for res.HasNextPage {
		w, res = get(t, r, "/pages?limit=2&cursor="+url.QueryEscape(res.NextCursor))
		require.Equal(t, http.StatusOK, w.Code)
		ids = append(ids, document.IDs(res.Items)...)
	}
	assert.Equal(t, []string{"d4", "d3", "d2", "d1", "d0"}, ids)
}

func TestListBadRequest(t *testing.T) {
	r := newRouter(t, memory.New("docs", document.ByID), document.ByID)

	w, _ := get(t, r, "/pages?limit=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, r, "/pages?cursor=%21%21")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSourceError(t *testing.T) {
	src := document.SourceFunc(func(ctx context.Context, req document.PageRequest) (<-chan document.Batch, error) {
		return nil, errors.New("unavailable")
	})
	w, _ := get(t, newRouter(t, src, document.ByID), "/pages")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(t, memory.New("docs", document.ByID), document.ByID).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
