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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SearchStarted()
		m.SearchFound()
		m.SearchFailed()
		m.SearchStopped()
		m.TransferStarted("copy")
		m.TransferProgress(10)
		m.TransferFinished("copy", "terminated")
		m.ObserveRequest("GET", "/search", 200, time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SearchStarted()
	m.SearchFound()
	m.SearchFound()
	m.TransferStarted("move")
	m.TransferProgress(12)
	m.TransferFinished("move", "terminated")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchResults))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchActive))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.TransferUnits))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TransfersActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransfersFinished.WithLabelValues("move", "terminated")))
}

func TestTwoInstancesDoNotCollide(t *testing.T) {
	require.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(nil)
	m.SearchStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ferry_searches_started_total 1")
}
