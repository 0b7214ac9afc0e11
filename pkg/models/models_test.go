package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityFromPriority(t *testing.T) {
	tests := []struct {
		priority int
		want     Severity
	}{
		{1, SeverityCritical},
		{2, SeverityHigh},
		{3, SeverityMedium},
		{4, SeverityLow},
		{0, SeverityMedium},
		{5, SeverityMedium},
		{99, SeverityMedium},
		{-1, SeverityMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityFromPriority(tt.priority), "priority %d", tt.priority)
	}
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity(" high ")
	assert.True(t, ok)
	assert.Equal(t, SeverityHigh, sev)

	sev, ok = ParseSeverity("urgent")
	assert.False(t, ok)
	assert.Equal(t, SeverityMedium, sev)
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Equal(t, 0, Severity("BOGUS").Rank())
}

func TestNewAlertRecordDefaults(t *testing.T) {
	rec := NewAlertRecord()

	assert.Equal(t, "", rec.Timestamp)
	assert.Equal(t, "0.0.0.0", rec.SourceIP)
	assert.Equal(t, "0.0.0.0", rec.DestinationIP)
	assert.Zero(t, rec.SourcePort)
	assert.Zero(t, rec.DestinationPort)
	assert.Equal(t, ProtocolTCP, rec.Protocol)
	assert.Equal(t, "Unknown Alert", rec.AlertType)
	assert.Equal(t, "Unknown", rec.Classification)
	assert.Equal(t, SeverityMedium, rec.Severity)
	assert.Equal(t, "0:0:0", rec.RuleID)
}

func TestSummarize(t *testing.T) {
	records := []AlertRecord{
		{AlertType: "Port Scan", Severity: SeverityMedium},
		{AlertType: "SQL Injection", Severity: SeverityCritical},
		{AlertType: "Port Scan", Severity: SeverityMedium},
	}

	summary := Summarize(records)

	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, map[string]int{"MEDIUM": 2, "CRITICAL": 1}, summary.SeverityDistribution)
	assert.Equal(t, map[string]int{"Port Scan": 2, "SQL Injection": 1}, summary.AlertTypeDistribution)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.Count)
	require.NotNil(t, summary.SeverityDistribution)
	require.NotNil(t, summary.AlertTypeDistribution)
	assert.Empty(t, summary.SeverityDistribution)
	assert.Empty(t, summary.AlertTypeDistribution)
}

func TestTopAlertTypes(t *testing.T) {
	summary := ParseSummary{AlertTypeDistribution: map[string]int{
		"XSS":        2,
		"DDoS":       5,
		"Port Scan":  2,
		"Brute":      1,
		"Malware":    3,
		"SQL Inject": 4,
	}}

	top := summary.TopAlertTypes(5)

	require.Len(t, top, 5)
	assert.Equal(t, AlertTypeCount{"DDoS", 5}, top[0])
	assert.Equal(t, AlertTypeCount{"SQL Inject", 4}, top[1])
	assert.Equal(t, AlertTypeCount{"Malware", 3}, top[2])
	// 次数相同按名称排序
	assert.Equal(t, AlertTypeCount{"Port Scan", 2}, top[3])
	assert.Equal(t, AlertTypeCount{"XSS", 2}, top[4])

	assert.Len(t, summary.TopAlertTypes(-1), 6)
}
