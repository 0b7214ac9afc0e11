package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/models"
)

// MarshalRecords 将记录序列编码为缩进的JSON数组，空序列编码为 []
func MarshalRecords(records []models.AlertRecord) ([]byte, error) {
	if records == nil {
		records = []models.AlertRecord{}
	}
	return marshalIndent(records)
}

// MarshalSummary 编码统计信息
func MarshalSummary(summary models.ParseSummary) ([]byte, error) {
	if summary.SeverityDistribution == nil {
		summary.SeverityDistribution = map[string]int{}
	}
	if summary.AlertTypeDistribution == nil {
		summary.AlertTypeDistribution = map[string]int{}
	}
	return marshalIndent(summary)
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveRecords 保存解析结果到JSON文件，自动创建父目录
func SaveRecords(path string, records []models.AlertRecord) error {
	data, err := MarshalRecords(records)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	logger.Log.Infof("结果已保存到: %s, 共 %d 条", path, len(records))
	return nil
}

// SaveSummary 保存统计信息到JSON文件
func SaveSummary(path string, summary models.ParseSummary) error {
	data, err := MarshalSummary(summary)
	if err != nil {
		return fmt.Errorf("序列化统计信息失败: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	logger.Log.Infof("统计信息已保存到: %s", path)
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}
