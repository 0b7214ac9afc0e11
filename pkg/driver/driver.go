package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/metrics"
	"go-snortalert/pkg/models"
	"go-snortalert/pkg/parser"
	"go-snortalert/pkg/splitter"
)

// ErrSourceUnreadable 输入文件不存在或无法读取
var ErrSourceUnreadable = errors.New("source unreadable")

// progressEvery 每解析多少条输出一次进度
const progressEvery = 10

// Sink 解析结果的输出目标
type Sink interface {
	Name() string
	Write(ctx context.Context, records []models.AlertRecord) error
	Close() error
}

// Result 一次批量解析的结果
type Result struct {
	Records    []models.AlertRecord
	Summary    models.ParseSummary
	SinkErrors map[string]error
}

// Driver 批量解析器：切分、逐条解析、编号并分发到输出目标
type Driver struct {
	parser *parser.Parser
	sinks  []Sink
}

func New(p *parser.Parser, sinks ...Sink) *Driver {
	if p == nil {
		p = parser.New()
	}
	return &Driver{parser: p, sinks: sinks}
}

// Run 读取并解析整个文件，文件无法读取时返回包装了 ErrSourceUnreadable 的错误
func (d *Driver) Run(ctx context.Context, path string) (*Result, error) {
	logger.Log.Infof("开始解析文件: %s", path)

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Log.Errorf("读取文件失败: %s, %v", path, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
	}
	return d.ParseText(ctx, string(content)), nil
}

// ReadFrom 从r读取全部内容并解析
func (d *Driver) ReadFrom(ctx context.Context, r io.Reader) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return d.ParseText(ctx, string(content)), nil
}

// ParseText 解析内存中的文本，输出目标失败只记录不中断
func (d *Driver) ParseText(ctx context.Context, text string) *Result {
	start := time.Now()
	defer func() {
		metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	records := make([]models.AlertRecord, 0)
	entries := 0
	for entry := range splitter.Split(text) {
		entries++
		rec, ok := d.parser.Parse(entry)
		if ok {
			rec.SequenceID = len(records) + 1
			records = append(records, rec)
		}
		if entries%progressEvery == 0 {
			logger.Log.Infof("已解析 %d 条...", entries)
		}
	}
	logger.Log.Infof("找到 %d 条日志条目，成功解析 %d 条", entries, len(records))

	result := &Result{
		Records: records,
		Summary: models.Summarize(records),
	}
	result.SinkErrors = d.dispatch(ctx, records)
	return result
}

func (d *Driver) dispatch(ctx context.Context, records []models.AlertRecord) map[string]error {
	var sinkErrs map[string]error
	for _, sink := range d.sinks {
		if err := sink.Write(ctx, records); err != nil {
			logger.Log.Errorf("写入输出目标失败: sink=%s, %v", sink.Name(), err)
			metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			if sinkErrs == nil {
				sinkErrs = make(map[string]error)
			}
			sinkErrs[sink.Name()] = fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}
	return sinkErrs
}

// Close 关闭全部输出目标
func (d *Driver) Close() error {
	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
