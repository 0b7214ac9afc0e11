package parser

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/metrics"
	"go-snortalert/pkg/models"
)

const (
	// DefaultMaxAlertTypeLength 告警描述的最大长度（字符数）
	DefaultMaxAlertTypeLength = 100

	// TimestampLayout 归一化后的时间格式
	TimestampLayout = "2006-01-02 15:04:05"

	// 补全年份后的流信息时间格式，秒后的小数部分由 time.Parse 自动接受
	flowTimeLayout = "2006-01/02-15:04:05"
)

var (
	headerRe         = regexp.MustCompile(`\[\*\*\] \[(\d+):(\d+):(\d+)\] (.+) \[\*\*\]`)
	classificationRe = regexp.MustCompile(`\[Classification: (.+?)\]`)
	priorityRe       = regexp.MustCompile(`\[Priority: (\d+)\]`)
	flowRe           = regexp.MustCompile(
		`(\d{2}/\d{2}-\d{2}:\d{2}:\d{2}\.\d+)\s+` +
			`(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}):(\d+)\s+->\s+` +
			`(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}):(\d+)`)
	// HTTPS 必须排在 HTTP 之前
	protocolRe = regexp.MustCompile(`^(HTTPS|HTTP|TCP|UDP|ICMP|FTP|SSH|DNS)\b`)
)

// 行在条目中的位置
const (
	headerLine = iota
	classificationLine
	flowLine
	transportLine
)

// Parser Snort告警条目解析器，解析失败的字段保持默认值
type Parser struct {
	now          func() time.Time
	maxAlertType int
	passes       []pass
}

// pass 一个独立的字段提取步骤，返回是否匹配
type pass struct {
	field string
	apply func(lines []string, rec *models.AlertRecord) bool
}

type Option func(*Parser)

// WithClock 设置提供当前年份的时钟
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// WithMaxAlertTypeLength 设置告警描述截断长度
func WithMaxAlertTypeLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxAlertType = n
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		now:          time.Now,
		maxAlertType: DefaultMaxAlertTypeLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.passes = []pass{
		{field: "header", apply: p.parseHeader},
		{field: "classification", apply: p.parseClassification},
		{field: "flow", apply: p.parseFlow},
		{field: "protocol", apply: p.parseProtocol},
	}
	return p
}

// Parse 解析单条告警条目。条目为空或只含空白时返回 false，其余情况总能得到一条记录
func (p *Parser) Parse(raw string) (models.AlertRecord, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		metrics.EntriesRejected.Inc()
		return models.AlertRecord{}, false
	}

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	rec := models.NewAlertRecord()
	for _, ps := range p.passes {
		if !ps.apply(lines, &rec) {
			metrics.FieldsUnmatched.WithLabelValues(ps.field).Inc()
			logger.Log.Debugf("字段未匹配，使用默认值: field=%s", ps.field)
		}
	}

	metrics.EntriesParsed.Inc()
	metrics.RecordsBySeverity.WithLabelValues(string(rec.Severity)).Inc()
	return rec, true
}

func line(lines []string, idx int) (string, bool) {
	if idx < len(lines) {
		return lines[idx], true
	}
	return "", false
}

// parseHeader 解析规则头 [**] [GID:SID:REV] Description [**]
func (p *Parser) parseHeader(lines []string, rec *models.AlertRecord) bool {
	l, ok := line(lines, headerLine)
	if !ok {
		return false
	}
	m := headerRe.FindStringSubmatch(l)
	if m == nil {
		return false
	}
	rec.RuleID = fmt.Sprintf("%s:%s:%s", m[1], m[2], m[3])
	rec.AlertType = truncate(m[4], p.maxAlertType)
	return true
}

// parseClassification 解析 [Classification: ...] 和 [Priority: ...]，两者互相独立
func (p *Parser) parseClassification(lines []string, rec *models.AlertRecord) bool {
	l, ok := line(lines, classificationLine)
	if !ok {
		return false
	}
	matched := false
	if m := classificationRe.FindStringSubmatch(l); m != nil {
		rec.Classification = m[1]
		matched = true
	}
	if m := priorityRe.FindStringSubmatch(l); m != nil {
		// 超出int范围的优先级同样归为MEDIUM
		priority, err := strconv.Atoi(m[1])
		if err != nil {
			priority = 0
		}
		rec.Severity = models.SeverityFromPriority(priority)
		matched = true
	}
	return matched
}

// parseFlow 解析网络流信息: timestamp src_ip:src_port -> dst_ip:dst_port
func (p *Parser) parseFlow(lines []string, rec *models.AlertRecord) bool {
	l, ok := line(lines, flowLine)
	if !ok {
		return false
	}
	m := flowRe.FindStringSubmatch(l)
	if m == nil {
		return false
	}

	rec.Timestamp = p.normalizeTimestamp(m[1])
	rec.SourceIP = ipv4(m[2])
	rec.SourcePort = port(m[3])
	rec.DestinationIP = ipv4(m[4])
	rec.DestinationPort = port(m[5])
	return true
}

// normalizeTimestamp 补全当前年份并转换为 YYYY-MM-DD HH:MM:SS，失败时保留原始字符串
func (p *Parser) normalizeTimestamp(raw string) string {
	year := p.now().Year()
	t, err := time.Parse(flowTimeLayout, fmt.Sprintf("%04d-%s", year, raw))
	if err != nil {
		logger.Log.Debugf("时间解析失败，保留原始值: %s, %v", raw, err)
		return raw
	}
	return t.Format(TimestampLayout)
}

// parseProtocol 在第三行、第四行行首查找协议，先匹配者生效
func (p *Parser) parseProtocol(lines []string, rec *models.AlertRecord) bool {
	for _, idx := range []int{flowLine, transportLine} {
		l, ok := line(lines, idx)
		if !ok {
			break
		}
		if m := protocolRe.FindStringSubmatch(l); m != nil {
			rec.Protocol = models.Protocol(m[1])
			return true
		}
	}
	return false
}

func ipv4(s string) string {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return models.DefaultIP
	}
	return addr.String()
}

func port(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 65535 {
		return 0
	}
	return n
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
