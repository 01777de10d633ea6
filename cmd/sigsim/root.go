package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/sigcollect/internal/app/version"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile   string // 配置文件
	OutputFormat string // 输出格式
	Verbose      bool   // 日志输出到标准输出
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "sigsim",
	Short: "多因子签名收集模拟器",
	Long: `sigsim - 多因子签名收集模拟器

按 YAML 场景构建账户、因子源与待签名载荷，
模拟用户对每个因子源签名、跳过或失败，
输出哪些载荷可以提交、哪些因子被忽略以及原因。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch globalFlags.OutputFormat {
		case "table", "json":
		default:
			return fmt.Errorf("不支持的输出格式: %s (可用: table, json)", globalFlags.OutputFormat)
		}
		if !globalFlags.Verbose {
			// 日志写到标准错误，标准输出只留结果
			return os.Setenv("SIGSIM_QUIET", "true")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "JSON 配置文件 (也可用 SIGSIM_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "table", "输出格式: table|json")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "日志输出到标准输出")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mnemonicCmd)
	rootCmd.AddCommand(exampleCmd)
	rootCmd.AddCommand(versionCmd)
}
