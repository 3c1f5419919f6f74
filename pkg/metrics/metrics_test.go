package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bodsmap/pkg/metrics"
	"github.com/agentstation/bodsmap/pkg/stats"
)

func TestCounters(t *testing.T) {
	m := metrics.New()

	m.StatementRead("entityStatement")
	m.StatementRead("entityStatement")
	m.StatementRead("personStatement")
	m.RecordWritten()
	m.SetCacheRecords(7)
	m.SetRunDuration(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatementsTotal.WithLabelValues("entityStatement")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatementsTotal.WithLabelValues("personStatement")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsWrittenTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.CacheRecords))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.RunDuration))
}

func TestRecorderCountsAlerts(t *testing.T) {
	m := metrics.New()
	var rec stats.Recorder = m

	rec.ObserveValue("P1", stats.Alert, "no-relationship-interests!")
	rec.ObserveValue("P2", stats.Alert, "no-relationship-interests!")
	rec.Observe(stats.Alert, "relationship-without-entity!")
	rec.Observe(stats.Raw, "address_type", "entityStatement", "BUSINESS")
	rec.Observe(stats.Alert)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnomaliesTotal.WithLabelValues("no-relationship-interests!")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnomaliesTotal.WithLabelValues("relationship-without-entity!")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.AnomaliesTotal), "only alert kinds are labelled")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.RecordWritten()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RecordsWrittenTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsWrittenTotal))
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.New()
	m.StatementRead("entityStatement")
	m.RecordWritten()

	path := filepath.Join(t.TempDir(), "bodsmap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `bodsmap_statements_total{statement_type="entityStatement"} 1`)
	assert.Contains(t, text, "bodsmap_records_written_total 1")
	assert.True(t, strings.Contains(text, "# HELP bodsmap_cache_records"))
}

func TestWriteTextfileError(t *testing.T) {
	m := metrics.New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
}
