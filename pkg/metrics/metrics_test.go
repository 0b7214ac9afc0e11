package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCollectors(t *testing.T) {
	EntriesParsed.Inc()
	FieldsUnmatched.WithLabelValues("flow").Inc()
	SinkErrors.WithLabelValues("kafka").Inc()

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "snortalert_entries_parsed_total")
	assert.Contains(t, string(body), `snortalert_fields_unmatched_total{field="flow"}`)
	assert.Contains(t, string(body), `snortalert_sink_errors_total{sink="kafka"}`)
}

func TestHandler_UnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
