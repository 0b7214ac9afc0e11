package storage

import (
	"context"
	"strconv"
	"time"

	"go-snortalert/pkg/geo"
	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const alertMeasurement = "snort_alert"

// InfluxStore 将告警记录按时间序列写入InfluxDB
type InfluxStore struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	locator  geo.Locator
	now      func() time.Time
}

func NewInfluxStore(url, token, org, bucket string, locator geo.Locator) *InfluxStore {
	client := influxdb2.NewClient(url, token)
	if locator == nil {
		locator = geo.NopLocator{}
	}
	return &InfluxStore{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		locator:  locator,
		now:      time.Now,
	}
}

func (s *InfluxStore) Name() string { return "influxdb" }

func (s *InfluxStore) Write(ctx context.Context, records []models.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(records))
	for _, rec := range records {
		points = append(points, newAlertPoint(rec, s.locator.Lookup(rec.SourceIP), s.now()))
	}
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		logger.Log.Errorf("写入InfluxDB失败: %v", err)
		return err
	}
	logger.Log.Infof("成功写入InfluxDB，共 %d 个点", len(points))
	return nil
}

// newAlertPoint 构建告警数据点；时间取记录时间戳，无法解析时使用处理时间
func newAlertPoint(rec models.AlertRecord, loc geo.Location, now time.Time) *write.Point {
	tags := map[string]string{
		"severity": string(rec.Severity),
		"protocol": string(rec.Protocol),
		"rule_id":  rec.RuleID,
	}
	if loc.Country != "" {
		tags["source_country"] = loc.Country
	}
	if loc.ASN != 0 {
		tags["source_asn"] = strconv.FormatUint(uint64(loc.ASN), 10)
	}

	fields := map[string]interface{}{
		"sequence_id":      rec.SequenceID,
		"source_ip":        rec.SourceIP,
		"source_port":      rec.SourcePort,
		"destination_ip":   rec.DestinationIP,
		"destination_port": rec.DestinationPort,
		"alert_type":       rec.AlertType,
		"classification":   rec.Classification,
	}

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", rec.Timestamp, time.Local)
	if err != nil {
		ts = now
	}
	return influxdb2.NewPoint(alertMeasurement, tags, fields, ts)
}

func (s *InfluxStore) Close() error {
	s.client.Close()
	return nil
}
