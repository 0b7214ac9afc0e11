package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go-snortalert/pkg/alerter"
	"go-snortalert/pkg/config"
	"go-snortalert/pkg/driver"
	"go-snortalert/pkg/geo"
	"go-snortalert/pkg/logger"
	"go-snortalert/pkg/metrics"
	"go-snortalert/pkg/models"
	"go-snortalert/pkg/parser"
	"go-snortalert/pkg/publisher"
	"go-snortalert/pkg/report"
	"go-snortalert/pkg/storage"
)

type parseOptions struct {
	output  string
	summary string
	format  string
	kafka   bool
	mysql   bool
	influx  bool
	webhook bool
}

func newParseCmd() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [input]",
		Short: "Parse a Snort alert log file",
		Long: `Parse a Snort alert log into structured records.

Entries are separated by blank lines. With no input, or "-", the log is read
from stdin. Records are printed in --format and optionally saved as a JSON
array with --output; the summary can be saved with --summary.`,
		Example: `  snortalert parse data/raw_snort_alerts.log -o data/parsed.json
  snortalert parse alerts.log --format json --summary summary.json
  cat alerts.log | snortalert parse --format none --kafka`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			applySinkFlags(cmd, opts)
			return runParse(cmd, input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write records as a JSON array to this file")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "write the parse summary as JSON to this file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "stdout format: table, json, yaml, none")
	cmd.Flags().BoolVar(&opts.kafka, "kafka", false, "publish records to Kafka")
	cmd.Flags().BoolVar(&opts.mysql, "mysql", false, "store records in MySQL")
	cmd.Flags().BoolVar(&opts.influx, "influx", false, "write records to InfluxDB")
	cmd.Flags().BoolVar(&opts.webhook, "webhook", false, "send webhook notifications for high severity alerts")
	return cmd
}

// applySinkFlags 未显式指定的开关取配置文件的值
func applySinkFlags(cmd *cobra.Command, opts *parseOptions) {
	cfg := config.GlobalConfig
	if !cmd.Flags().Changed("kafka") {
		opts.kafka = cfg.Kafka.Enabled
	}
	if !cmd.Flags().Changed("mysql") {
		opts.mysql = cfg.MySQL.Enabled
	}
	if !cmd.Flags().Changed("influx") {
		opts.influx = cfg.InfluxDB.Enabled
	}
	if !cmd.Flags().Changed("webhook") {
		opts.webhook = cfg.Webhook.Enabled
	}
}

func runParse(cmd *cobra.Command, input string, opts *parseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GlobalConfig

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Log.Errorf("指标服务启动失败: %v", err)
			}
		}()
	}

	locator, err := geo.Open(cfg.GeoIP.CityPath, cfg.GeoIP.ASNPath)
	if err != nil {
		return fmt.Errorf("初始化GeoIP数据库失败: %w", err)
	}
	defer locator.Close()

	sinks, err := buildSinks(ctx, cfg, opts, locator)
	if err != nil {
		return err
	}

	p := parser.New(parser.WithMaxAlertTypeLength(cfg.Parser.MaxAlertTypeLength))
	d := driver.New(p, sinks...)
	defer func() {
		if err := d.Close(); err != nil {
			logger.Log.Errorf("关闭输出目标失败: %v", err)
		}
	}()

	var result *driver.Result
	if input == "-" {
		result, err = d.ReadFrom(ctx, cmd.InOrStdin())
	} else {
		result, err = d.Run(ctx, input)
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := storage.SaveRecords(opts.output, result.Records); err != nil {
			return fmt.Errorf("保存文件失败: %w", err)
		}
	}
	if opts.summary != "" {
		if err := storage.SaveSummary(opts.summary, result.Summary); err != nil {
			return fmt.Errorf("保存文件失败: %w", err)
		}
	}

	if opts.format != "none" {
		if err := report.Render(cmd.OutOrStdout(), opts.format, result.Records, result.Summary); err != nil {
			return err
		}
	}

	for name, sinkErr := range result.SinkErrors {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s sink failed: %v\n", name, sinkErr)
	}
	return nil
}

func buildSinks(ctx context.Context, cfg config.Config, opts *parseOptions, locator geo.Locator) ([]driver.Sink, error) {
	var sinks []driver.Sink
	closeAll := func() {
		for _, s := range sinks {
			s.Close()
		}
	}

	if opts.kafka {
		pub, err := publisher.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("初始化Kafka发布器失败: %w", err)
		}
		sinks = append(sinks, pub)
	}

	if opts.mysql {
		store, err := storage.NewSQLStore(ctx, cfg.MySQL.DSN, cfg.MySQL.MaxIdle, cfg.MySQL.MaxOpen)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("初始化MySQL失败: %w", err)
		}
		sinks = append(sinks, store)
	}

	if opts.influx {
		sinks = append(sinks, storage.NewInfluxStore(cfg.InfluxDB.URL, cfg.InfluxDB.Token, cfg.InfluxDB.Org, cfg.InfluxDB.Bucket, locator))
	}

	if opts.webhook {
		if cfg.Webhook.URL == "" {
			closeAll()
			return nil, fmt.Errorf("webhook.url 未配置")
		}
		minSeverity, ok := models.ParseSeverity(cfg.Webhook.MinSeverity)
		if !ok {
			logger.Log.Warnf("无效的 webhook.min_severity: %s，使用 %s", cfg.Webhook.MinSeverity, minSeverity)
		}
		whitelist := alerter.NewWhitelist(cfg.Security.WhitelistIPs)
		sinks = append(sinks, alerter.NewAlerter(cfg.Webhook.URL, minSeverity, cfg.Webhook.Cooldown, whitelist))
	}

	return sinks, nil
}
