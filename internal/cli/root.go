// Package cli 进程入口：加载配置、装配组件并提供 serve / worker / migrate / replay 子命令
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigDir string
	LogLevel  string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "destinysync",
		Short:         "DestinySync - 玩家活动数据同步 worker",
		Long:          "消费同步队列中的任务消息，将账号、活动、战后报告、战队与参考数据合并写入数据库，并把新发现的活动实例回投到下游队列。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "./config", "config.yaml 所在目录")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "覆盖配置中的日志级别")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewWorkerCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	return cmd
}
