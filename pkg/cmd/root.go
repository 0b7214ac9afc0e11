package cmd

import (
	"github.com/spf13/cobra"

	"go-snortalert/pkg/config"
	"go-snortalert/pkg/logger"
)

// Version 构建时通过 -ldflags 覆盖
var Version = "0.1.0"

// NewRootCmd 创建命令树
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "snortalert",
		Short: "Snort告警日志解析器",
		Long: `snortalert 将 Snort 输出的多行告警文本解析为结构化JSON记录，
并输出严重程度与攻击类型统计，可选地分发到 Kafka、MySQL、InfluxDB 和 webhook。`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(cfgFile); err != nil {
				return err
			}
			return logger.Init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config/config.yaml)")

	root.AddCommand(newParseCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
