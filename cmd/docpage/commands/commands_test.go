package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ncobase/docpage/config"
	"github.com/ncobase/docpage/document"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newMemoryApp(t *testing.T, pageSize int) *App {
	t.Helper()
	cfg, err := config.LoadConfig(writeConfig(t, "logger:\n  level: 2\n"))
	require.NoError(t, err)
	cfg.Paging.PageSize = pageSize

	app, cleanup, err := initApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return app
}

func decodeLines[T any](t *testing.T, s string) []T {
	t.Helper()
	var out []T
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		var v T
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v))
		out = append(out, v)
	}
	return out
}

func TestGenerate(t *testing.T) {
	docs := generate(3, false, time.Unix(0, 0))
	assert.Equal(t, []string{"doc-00000", "doc-00001", "doc-00002"}, document.IDs(docs))
	rank, _ := docs[2].Fields.Int64("rank")
	assert.Equal(t, int64(2), rank)

	random := generate(2, true, time.Now())
	assert.Len(t, random[0].ID, 12)
	assert.NotEqual(t, random[0].ID, random[1].ID)
}

func TestSeedChunks(t *testing.T) {
	var calls [][]string
	b := &Backend{Kind: "test", put: func(_ context.Context, docs ...document.Document) error {
		calls = append(calls, document.IDs(docs))
		return nil
	}}

	n, err := seed(context.Background(), b, generate(5, false, time.Now()), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, calls, 3)
	assert.Len(t, calls[2], 1)
}

func TestRunPageOverMemory(t *testing.T) {
	app := newMemoryApp(t, 3)
	assert.False(t, app.Backend.Persistent())

	var out bytes.Buffer
	err := runPage(context.Background(), app, &pageOptions{pages: 5, seed: 7}, &out)
	require.NoError(t, err)

	lines := decodeLines[pageLine](t, out.String())
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"doc-00000", "doc-00001", "doc-00002"}, document.IDs(lines[0].Documents))
	assert.True(t, lines[0].HasMore)
	assert.Equal(t, []string{"doc-00006"}, document.IDs(lines[2].Documents))
	assert.False(t, lines[2].HasMore)

	snap := app.Collector.Snapshot()
	assert.Equal(t, int64(3), snap.Fetches)
}

func TestRunPageLogsMetrics(t *testing.T) {
	app := newMemoryApp(t, 2)
	var logs bytes.Buffer
	app.Logger.SetOutput(&logs)
	app.Logger.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		app.Logger.SetOutput(os.Stderr)
		app.Logger.SetLevel(logrus.InfoLevel)
	})

	require.NoError(t, runPage(context.Background(), app, &pageOptions{pages: 1, seed: 3}, io.Discard))
	assert.Contains(t, logs.String(), "paging metrics")
	assert.Contains(t, logs.String(), "fetches=1")
	assert.Contains(t, logs.String(), "page_loads=1")
}

func TestRunPageFollow(t *testing.T) {
	app := newMemoryApp(t, 3)
	app.Config.Paging.ListenForUpdates = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runPage(ctx, app, &pageOptions{pages: 1, seed: 2, follow: true}, out)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"page":1`)
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, app.Backend.Put(ctx, document.New("doc-00002", map[string]any{"title": "late"})))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"doc-00002"`)
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runPage did not stop")
	}
}

func TestSeedCommandRejectsMemory(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"seed", "--conf", writeConfig(t, "source:\n  kind: memory\n")})
	root.SetOut(&bytes.Buffer{})
	err := root.Execute()
	assert.ErrorIs(t, err, ErrNotPersistent)
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())

	var info map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Contains(t, info, "version")
}

func TestServeOverMemory(t *testing.T) {
	app := newMemoryApp(t, 3)
	require.NoError(t, app.Backend.Put(context.Background(), generate(3, false, time.Now())...))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := newHTTPServer(app)
	srv.Addr = addr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, app, srv) }()

	var body map[string]any
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/pages?limit=2")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&body) == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, true, body["has_next"])
	assert.Len(t, body["items"], 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
