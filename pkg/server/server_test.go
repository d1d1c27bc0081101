// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ferry/pkg/metrics"
	"github.com/walteh/ferry/pkg/service"
	"github.com/walteh/ferry/pkg/testutils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t   *testing.T
	fs  afero.Fs
	svc *service.Service
	h   http.Handler
}

func newHarness(t *testing.T, tree map[string]string) *harness {
	ctx := testutils.Context(t)
	fs := afero.NewMemMapFs()
	testutils.Tree(t, fs, "/", tree)

	m := metrics.New(nil)
	svc := service.New(service.Options{Fs: fs, Metrics: m})
	t.Cleanup(svc.Close)

	return &harness{t: t, fs: fs, svc: svc, h: New(ctx, svc, m).Handler()}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSearchRoutes(t *testing.T) {
	h := newHarness(t, map[string]string{"r/a.go": "", "r/b.txt": "", "r/sub/c.go": ""})

	rec := h.do(http.MethodPost, "/search", map[string]any{
		"root":   "/r",
		"filter": map[string]bool{"files": true},
		"match":  map[string]any{"kind": 2, "pattern": ".go"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var paths []string
	testutils.Eventually(t, func() bool {
		msg := decode[map[string]any](t, h.do(http.MethodGet, "/search", nil))
		items, _ := msg["items"].([]any)
		for _, it := range items {
			paths = append(paths, it.(map[string]any)["path"].(string))
		}
		return msg["state"] == "terminated"
	}, "search should finish")
	assert.ElementsMatch(t, []string{"/r/a.go", "/r/sub/c.go"}, paths)

	active := decode[map[string]bool](t, h.do(http.MethodGet, "/search/active", nil))
	assert.False(t, active["searching"])

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/search", nil).Code)
}

func TestSearchBadPattern(t *testing.T) {
	h := newHarness(t, map[string]string{"r/": ""})

	rec := h.do(http.MethodPost, "/search", map[string]any{
		"root":   "/r",
		"filter": map[string]bool{"files": true},
		"match":  map[string]any{"kind": 0, "pattern": "[abc"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid pattern")

	rec = h.do(http.MethodPost, "/search", map[string]any{"root": "/r", "filter": map[string]bool{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty filter")
}

func TestClipboardPasteAndTransfers(t *testing.T) {
	h := newHarness(t, map[string]string{"src/D/F": "0123456789", "src/D/E/": "", "dst/": ""})

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/paste", map[string]string{"destination": "/dst"}).Code, "empty clipboard")

	rec := h.do(http.MethodPost, "/clipboard/copy", map[string]any{"items": []map[string]string{{"path": "/src/D"}}})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	state := decode[map[string]any](t, h.do(http.MethodGet, "/clipboard", nil))
	assert.Equal(t, false, state["empty"])
	assert.Equal(t, "copied", state["mode"])

	rec = h.do(http.MethodPost, "/paste", map[string]string{"destination": "/dst"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var pasted struct {
		ID struct {
			Slot  int64  `json:"slot"`
			Nonce string `json:"nonce"`
		} `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pasted))
	path := fmt.Sprintf("/transfers/%d/%s", pasted.ID.Slot, pasted.ID.Nonce)

	testutils.Eventually(t, func() bool {
		msg := decode[map[string]any](t, h.do(http.MethodGet, path, nil))
		return msg["state"] == "terminated"
	}, "transfer should finish")

	msg := decode[map[string]any](t, h.do(http.MethodGet, path, nil))
	assert.Equal(t, "copy", msg["kind"])
	assert.EqualValues(t, 12, msg["total"])
	assert.EqualValues(t, 12, msg["current"])

	list := decode[[]map[string]any](t, h.do(http.MethodGet, "/transfers", nil))
	assert.Empty(t, list, "only running sessions are listed")
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, path, nil).Code, "finished sessions stay until cleanup")

	removed := decode[map[string]int](t, h.do(http.MethodDelete, "/transfers", nil))
	assert.Equal(t, 1, removed["removed"])
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, nil).Code, "cleaned up")
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/transfers/x/1", nil).Code)

	rec = h.do(http.MethodPost, "/paste", map[string]string{"destination": "/nowhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/clipboard", nil).Code)
	assert.Equal(t, true, decode[map[string]any](t, h.do(http.MethodGet, "/clipboard", nil))["empty"])
}

func TestFileRoutes(t *testing.T) {
	h := newHarness(t, map[string]string{"w/a": "1", "w/d/x": "2"})

	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/fs/dir", map[string]string{"path": "/w/new"}).Code)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/fs/file", map[string]string{"path": "/w/new/f"}).Code)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/fs/file", map[string]string{"path": "/w/new/f"}).Code)

	rec := h.do(http.MethodPost, "/fs/rename", map[string]string{"path": "/w/a", "new_name": "b"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/w/b", decode[map[string]string](t, rec)["path"])
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/fs/rename", map[string]string{"path": "/w/b", "new_name": "x/y"}).Code)

	kids := decode[[]map[string]any](t, h.do(http.MethodGet, "/fs/children?dir=/w&dirs=true", nil))
	require.Len(t, kids, 2)
	assert.Equal(t, "/w/d", kids[0]["path"])
	assert.EqualValues(t, 1, kids[0]["metadata"].(map[string]any)["size"], "directory size is child count")

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/fs/children?dir=/w&files=maybe", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/fs/children", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/fs/children?dir=/nope", nil).Code)

	stat := decode[map[string]any](t, h.do(http.MethodGet, "/fs/stat?path=/w/b", nil))
	assert.Equal(t, "file", stat["metadata"].(map[string]any)["kind"])

	rec = h.do(http.MethodPost, "/fs/delete", map[string]any{"items": []map[string]string{{"path": "/w/d"}}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	ok, err := afero.Exists(h.fs, "/w/d")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMetricsAndHealth(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", nil).Code)

	rec := h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ferry_http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestServeShutsDownWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testutils.Context(t))
	svc := service.New(service.Options{Fs: afero.NewMemMapFs()})
	defer svc.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- New(ctx, svc, nil).ServeListener(ctx, ln) }()

	testutils.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, "server should answer")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
