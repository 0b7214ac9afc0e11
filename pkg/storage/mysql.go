package storage

import (
	"context"
	"database/sql"
	"fmt"

	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/models"

	_ "github.com/go-sql-driver/mysql"
)

const createAlertsTable = `
CREATE TABLE IF NOT EXISTS snort_alerts (
    id               BIGINT AUTO_INCREMENT PRIMARY KEY,
    sequence_id      INT          NOT NULL,
    alert_time       VARCHAR(32)  NOT NULL,
    source_ip        VARCHAR(15)  NOT NULL,
    source_port      INT          NOT NULL,
    destination_ip   VARCHAR(15)  NOT NULL,
    destination_port INT          NOT NULL,
    protocol         VARCHAR(8)   NOT NULL,
    alert_type       VARCHAR(255) NOT NULL,
    classification   VARCHAR(255) NOT NULL,
    severity         VARCHAR(8)   NOT NULL,
    rule_id          VARCHAR(64)  NOT NULL,
    created_at       DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const insertAlert = `
INSERT INTO snort_alerts (
    sequence_id, alert_time, source_ip, source_port,
    destination_ip, destination_port, protocol, alert_type,
    classification, severity, rule_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLStore 将告警记录写入MySQL
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore 连接MySQL并确保表存在
func NewSQLStore(ctx context.Context, dsn string, maxIdle, maxOpen int) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(maxIdle)
	db.SetMaxOpenConns(maxOpen)

	s := NewSQLStoreFromDB(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStoreFromDB 使用已有的连接
func NewSQLStoreFromDB(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema 创建 snort_alerts 表
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createAlertsTable); err != nil {
		return fmt.Errorf("创建表失败: %w", err)
	}
	return nil
}

func (s *SQLStore) Name() string { return "mysql" }

// Write 在一个事务中写入全部记录
func (s *SQLStore) Write(ctx context.Context, records []models.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertAlert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, recordArgs(rec)...); err != nil {
			logger.Log.Errorf("保存告警记录失败: sequence_id=%d, error=%v", rec.SequenceID, err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Log.Infof("成功保存告警记录到MySQL，共 %d 条", len(records))
	return nil
}

func recordArgs(rec models.AlertRecord) []any {
	return []any{
		rec.SequenceID,
		rec.Timestamp,
		rec.SourceIP,
		rec.SourcePort,
		rec.DestinationIP,
		rec.DestinationPort,
		string(rec.Protocol),
		rec.AlertType,
		rec.Classification,
		string(rec.Severity),
		rec.RuleID,
	}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
