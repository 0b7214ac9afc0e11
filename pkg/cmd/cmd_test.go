package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-snortalert/pkg/config"
	"go-snortalert/pkg/driver"
	"go-snortalert/pkg/models"
	"go-snortalert/pkg/report"
)

const alertLog = `[**] [1:1000001:1] SQL Injection Attempt [**]
[Classification: Web Application Attack] [Priority: 1]
02/04-10:30:25.123456 192.168.1.100:54321 -> 10.0.0.5:80
TCP TTL:64 TOS:0x0 ID:12345 IpLen:20 DgmLen:60

[**] [1:1000002:1] Port Scan Detected [**]
[Classification: Attempted Information Leak] [Priority: 3]
02/04-10:31:00.000000 172.16.0.9:40000 -> 10.0.0.5:22
UDP TTL:64 TOS:0x0 ID:1 IpLen:20 DgmLen:40
`

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	orig := config.GlobalConfig
	t.Cleanup(func() { config.GlobalConfig = orig })

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw_snort_alerts.log")
	require.NoError(t, os.WriteFile(path, []byte(alertLog), 0o644))
	return path
}

func TestParse_JSONFormat(t *testing.T) {
	stdout, _, err := execute(t, "", "parse", writeLog(t), "--format", "json")
	require.NoError(t, err)

	var out report.Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Records, 2)

	first := out.Records[0]
	assert.Equal(t, 1, first.SequenceID)
	assert.Equal(t, "SQL Injection Attempt", first.AlertType)
	assert.Equal(t, models.SeverityCritical, first.Severity)
	assert.Equal(t, models.ProtocolTCP, first.Protocol)
	assert.Equal(t, 54321, first.SourcePort)
	assert.Equal(t, "1:1000001:1", first.RuleID)

	assert.Equal(t, 2, out.Records[1].SequenceID)
	assert.Equal(t, models.SeverityMedium, out.Records[1].Severity)
	assert.Equal(t, 2, out.Summary.Count)
	assert.Equal(t, 1, out.Summary.SeverityDistribution["CRITICAL"])
	assert.Equal(t, 1, out.Summary.AlertTypeDistribution["Port Scan Detected"])
}

func TestParse_Stdin(t *testing.T) {
	stdout, _, err := execute(t, alertLog, "parse", "-f", "yaml")
	require.NoError(t, err)

	assert.Contains(t, stdout, "alert_type: SQL Injection Attempt")
	assert.Contains(t, stdout, "alert_type: Port Scan Detected")
}

func TestParse_OutputFiles(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "data", "parsed.json")
	summary := filepath.Join(dir, "data", "summary.json")

	stdout, _, err := execute(t, "", "parse", writeLog(t), "-o", output, "--summary", summary, "--format", "none")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var records []models.AlertRecord
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 2)

	data, err = os.ReadFile(summary)
	require.NoError(t, err)
	var s models.ParseSummary
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, 2, s.Count)
}

func TestParse_EmptyInput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "parsed.json")

	_, _, err := execute(t, "\n\n", "parse", "-o", output, "--format", "none")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestParse_MissingSource(t *testing.T) {
	_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "missing.log"))

	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrSourceUnreadable)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, _, err := execute(t, "", "parse", writeLog(t), "--format", "xml")

	assert.ErrorContains(t, err, "unsupported output format")
}

func TestParse_WebhookWithoutURL(t *testing.T) {
	_, _, err := execute(t, "", "parse", writeLog(t), "--webhook")

	assert.ErrorContains(t, err, "webhook.url")
}

func TestParse_TooManyArgs(t *testing.T) {
	_, _, err := execute(t, "", "parse", "a.log", "b.log")

	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.Equal(t, "snortalert "+Version+"\n", stdout)
}
