package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Constructs.Inc()
	m.Appends.Add(4)
	m.Nodes.Set(5)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Appends))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, want := range []string{
		"linkedlist_constructs_total 1",
		"linkedlist_appends_total 4",
		"linkedlist_nodes 5",
	} {
		assert.True(t, strings.Contains(string(body), want), "missing %q", want)
	}
}

func TestNewIsIsolated(t *testing.T) {
	// a second registry must not panic on duplicate registration
	a, b := New(), New()
	a.Appends.Inc()
	assert.Zero(t, testutil.ToFloat64(b.Appends))
}
