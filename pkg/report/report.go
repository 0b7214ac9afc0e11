package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go-snortalert/pkg/models"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// TopAlertTypes 统计信息中展示的攻击类型数量
const TopAlertTypes = 5

var (
	headerColor = color.New(color.FgWhite, color.Bold)
	titleColor  = color.New(color.FgCyan, color.Bold)

	severityColors = map[models.Severity]*color.Color{
		models.SeverityCritical: color.New(color.FgRed, color.Bold),
		models.SeverityHigh:     color.New(color.FgRed),
		models.SeverityMedium:   color.New(color.FgYellow),
		models.SeverityLow:      color.New(color.FgGreen),
	}
)

// Output 结果与统计信息的组合，用于json/yaml输出
type Output struct {
	Records []models.AlertRecord `json:"records" yaml:"records"`
	Summary models.ParseSummary  `json:"summary" yaml:"summary"`
}

// Render 按格式输出：table、json、yaml
func Render(w io.Writer, format string, records []models.AlertRecord, summary models.ParseSummary) error {
	if records == nil {
		records = []models.AlertRecord{}
	}
	out := Output{Records: records, Summary: summary}
	switch strings.ToLower(format) {
	case "", "table":
		RenderTable(w, records)
		PrintSummary(w, summary)
		return nil
	case "json":
		return RenderJSON(w, out)
	case "yaml":
		return RenderYAML(w, out)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func RenderYAML(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderTable 输出告警记录表
func RenderTable(w io.Writer, records []models.AlertRecord) {
	t := newTable([]string{"ID", "TIME", "SEVERITY", "ALERT", "SOURCE", "DESTINATION", "PROTO", "RULE"})
	for _, r := range records {
		t.addRow([]string{
			strconv.Itoa(r.SequenceID),
			r.Timestamp,
			string(r.Severity),
			r.AlertType,
			fmt.Sprintf("%s:%d", r.SourceIP, r.SourcePort),
			fmt.Sprintf("%s:%d", r.DestinationIP, r.DestinationPort),
			string(r.Protocol),
			r.RuleID,
		})
	}
	t.render(w)
}

// PrintSummary 输出严重程度分布和前5种攻击类型
func PrintSummary(w io.Writer, summary models.ParseSummary) {
	titleColor.Fprintf(w, "\n统计信息: 共 %d 条\n", summary.Count)
	if summary.Count == 0 {
		return
	}

	fmt.Fprintln(w, "  严重程度分布:")
	severities := make([]string, 0, len(summary.SeverityDistribution))
	for sev := range summary.SeverityDistribution {
		severities = append(severities, sev)
	}
	sort.Slice(severities, func(i, j int) bool {
		return models.Severity(severities[i]).Rank() > models.Severity(severities[j]).Rank()
	})
	for _, sev := range severities {
		c, ok := severityColors[models.Severity(sev)]
		if !ok {
			c = color.New(color.Reset)
		}
		fmt.Fprint(w, "    ")
		c.Fprintf(w, "%-8s", sev)
		fmt.Fprintf(w, " %d 条\n", summary.SeverityDistribution[sev])
	}

	fmt.Fprintf(w, "\n  攻击类型分布 (前%d):\n", TopAlertTypes)
	for _, at := range summary.TopAlertTypes(TopAlertTypes) {
		fmt.Fprintf(w, "    %s: %d 条\n", at.AlertType, at.Count)
	}
}

type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers []string) *table {
	return &table{headers: headers}
}

func (t *table) addRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, header := range t.headers {
		headerColor.Fprintf(w, "%-*s  ", widths[i], header)
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}
