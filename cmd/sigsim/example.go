package main

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/sigcollect/configs"
)

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "输出示例场景",
	Example: `  sigsim example > scenario.yaml
  sigsim run --scenario scenario.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(configs.GetExampleScenario())
		return err
	},
}
