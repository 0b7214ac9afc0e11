package models

import (
	"sort"
	"strings"
)

// Severity 告警严重程度，封闭枚举
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SeverityFromPriority 将Snort优先级映射为严重程度，1-4以外的值一律为MEDIUM
func SeverityFromPriority(priority int) Severity {
	switch priority {
	case 1:
		return SeverityCritical
	case 2:
		return SeverityHigh
	case 3:
		return SeverityMedium
	case 4:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// ParseSeverity 解析配置中的严重程度名称（大小写不敏感）
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityLow:
		return SeverityLow, true
	}
	return SeverityMedium, false
}

// Rank 返回严重程度的等级，CRITICAL最高
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Protocol 传输/应用层协议，封闭枚举
type Protocol string

const (
	ProtocolTCP   Protocol = "TCP"
	ProtocolUDP   Protocol = "UDP"
	ProtocolICMP  Protocol = "ICMP"
	ProtocolHTTP  Protocol = "HTTP"
	ProtocolHTTPS Protocol = "HTTPS"
	ProtocolFTP   Protocol = "FTP"
	ProtocolSSH   Protocol = "SSH"
	ProtocolDNS   Protocol = "DNS"
)

// Protocols 协议集合
var Protocols = []Protocol{
	ProtocolTCP, ProtocolUDP, ProtocolICMP, ProtocolHTTP,
	ProtocolHTTPS, ProtocolFTP, ProtocolSSH, ProtocolDNS,
}

// 字段默认值
const (
	DefaultIP             = "0.0.0.0"
	DefaultAlertType      = "Unknown Alert"
	DefaultClassification = "Unknown"
	DefaultRuleID         = "0:0:0"
)

// AlertRecord 解析后的结构化告警记录
type AlertRecord struct {
	SequenceID      int      `json:"sequence_id" yaml:"sequence_id"`
	Timestamp       string   `json:"timestamp" yaml:"timestamp"`
	SourceIP        string   `json:"source_ip" yaml:"source_ip"`
	SourcePort      int      `json:"source_port" yaml:"source_port"`
	DestinationIP   string   `json:"destination_ip" yaml:"destination_ip"`
	DestinationPort int      `json:"destination_port" yaml:"destination_port"`
	Protocol        Protocol `json:"protocol" yaml:"protocol"`
	AlertType       string   `json:"alert_type" yaml:"alert_type"`
	Classification  string   `json:"classification" yaml:"classification"`
	Severity        Severity `json:"severity" yaml:"severity"`
	RuleID          string   `json:"rule_id" yaml:"rule_id"`
}

// NewAlertRecord 返回全部字段为默认值的记录
func NewAlertRecord() AlertRecord {
	return AlertRecord{
		SourceIP:       DefaultIP,
		DestinationIP:  DefaultIP,
		Protocol:       ProtocolTCP,
		AlertType:      DefaultAlertType,
		Classification: DefaultClassification,
		Severity:       SeverityMedium,
		RuleID:         DefaultRuleID,
	}
}

// ParseSummary 由记录序列派生的统计信息
type ParseSummary struct {
	Count                 int            `json:"count" yaml:"count"`
	SeverityDistribution  map[string]int `json:"severity_distribution" yaml:"severity_distribution"`
	AlertTypeDistribution map[string]int `json:"alert_type_distribution" yaml:"alert_type_distribution"`
}

// Summarize 对完整的记录序列计算统计信息
func Summarize(records []AlertRecord) ParseSummary {
	summary := ParseSummary{
		Count:                 len(records),
		SeverityDistribution:  make(map[string]int),
		AlertTypeDistribution: make(map[string]int),
	}
	for _, r := range records {
		summary.SeverityDistribution[string(r.Severity)]++
		summary.AlertTypeDistribution[r.AlertType]++
	}
	return summary
}

// AlertTypeCount 攻击类型及其出现次数
type AlertTypeCount struct {
	AlertType string
	Count     int
}

// TopAlertTypes 返回出现次数最多的n种攻击类型，次数相同按名称排序
func (s ParseSummary) TopAlertTypes(n int) []AlertTypeCount {
	counts := make([]AlertTypeCount, 0, len(s.AlertTypeDistribution))
	for alertType, count := range s.AlertTypeDistribution {
		counts = append(counts, AlertTypeCount{AlertType: alertType, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].AlertType < counts[j].AlertType
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
