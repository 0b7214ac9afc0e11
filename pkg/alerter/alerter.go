package alerter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/models"
)

// Alerter 对高严重程度的告警记录发送webhook通知
type Alerter struct {
	webhookURL        string
	minSeverity       models.Severity
	whitelist         *Whitelist
	client            *http.Client
	alertHistory      map[string]time.Time // 指纹 -> 最后告警时间
	alertHistoryMu    sync.RWMutex
	alertCooldownTime time.Duration
	now               func() time.Time
}

type Option func(*Alerter)

func WithHTTPClient(client *http.Client) Option {
	return func(a *Alerter) { a.client = client }
}

func WithClock(now func() time.Time) Option {
	return func(a *Alerter) { a.now = now }
}

// NewAlerter 创建告警处理器，cooldown 为同一指纹两次通知的最小间隔
func NewAlerter(webhookURL string, minSeverity models.Severity, cooldown time.Duration, whitelist *Whitelist, opts ...Option) *Alerter {
	if whitelist == nil {
		whitelist = NewWhitelist(nil)
	}
	a := &Alerter{
		webhookURL:        webhookURL,
		minSeverity:       minSeverity,
		whitelist:         whitelist,
		client:            &http.Client{Timeout: 10 * time.Second},
		alertHistory:      make(map[string]time.Time),
		alertCooldownTime: cooldown,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// notification webhook请求体
type notification struct {
	NotifiedAt      time.Time       `json:"notified_at"`
	SequenceID      int             `json:"sequence_id"`
	Timestamp       string          `json:"timestamp"`
	Severity        models.Severity `json:"severity"`
	AlertType       string          `json:"alert_type"`
	Classification  string          `json:"classification"`
	RuleID          string          `json:"rule_id"`
	SourceIP        string          `json:"source_ip"`
	SourcePort      int             `json:"source_port"`
	DestinationIP   string          `json:"destination_ip"`
	DestinationPort int             `json:"destination_port"`
	Protocol        models.Protocol `json:"protocol"`
}

// fingerprint 源IP与规则组成的告警指纹
func fingerprint(rec models.AlertRecord) string {
	return rec.SourceIP + "|" + rec.RuleID
}

func (a *Alerter) Name() string { return "webhook" }

// Write 依次处理记录，单条通知失败不影响后续记录
func (a *Alerter) Write(ctx context.Context, records []models.AlertRecord) error {
	a.CleanupOldHistory()

	var errs []error
	for _, rec := range records {
		if err := a.TriggerAlert(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TriggerAlert 对单条记录判断是否需要通知并发送
func (a *Alerter) TriggerAlert(ctx context.Context, rec models.AlertRecord) error {
	if rec.Severity.Rank() < a.minSeverity.Rank() {
		return nil
	}
	if a.whitelist.ContainsIP(rec.SourceIP) {
		logger.Log.Debugf("IP %s 在白名单中，跳过告警", rec.SourceIP)
		return nil
	}

	fp := fingerprint(rec)
	a.alertHistoryMu.RLock()
	lastAlertTime, exists := a.alertHistory[fp]
	a.alertHistoryMu.RUnlock()

	now := a.now()
	if exists && now.Sub(lastAlertTime) < a.alertCooldownTime {
		logger.Log.Infof("指纹 %s 在冷却期内，跳过告警", fp)
		return nil
	}

	if err := a.sendAlertNotification(ctx, rec, now); err != nil {
		logger.Log.Errorf("发送告警通知失败: sequence_id=%d, %v", rec.SequenceID, err)
		return err
	}

	a.alertHistoryMu.Lock()
	a.alertHistory[fp] = now
	a.alertHistoryMu.Unlock()

	logger.Log.Infof("成功触发告警: 指纹=%s, 严重程度=%s", fp, rec.Severity)
	return nil
}

func (a *Alerter) sendAlertNotification(ctx context.Context, rec models.AlertRecord, now time.Time) error {
	body, err := json.Marshal(notification{
		NotifiedAt:      now,
		SequenceID:      rec.SequenceID,
		Timestamp:       rec.Timestamp,
		Severity:        rec.Severity,
		AlertType:       rec.AlertType,
		Classification:  rec.Classification,
		RuleID:          rec.RuleID,
		SourceIP:        rec.SourceIP,
		SourcePort:      rec.SourcePort,
		DestinationIP:   rec.DestinationIP,
		DestinationPort: rec.DestinationPort,
		Protocol:        rec.Protocol,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook返回状态码 %d", resp.StatusCode)
	}
	return nil
}

// CleanupOldHistory 清理过期的告警历史
func (a *Alerter) CleanupOldHistory() {
	a.alertHistoryMu.Lock()
	defer a.alertHistoryMu.Unlock()

	now := a.now()
	for fp, lastAlertTime := range a.alertHistory {
		if now.Sub(lastAlertTime) > a.alertCooldownTime {
			delete(a.alertHistory, fp)
		}
	}
}

func (a *Alerter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}
