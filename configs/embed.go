// Package configs 嵌入默认配置与示例场景
package configs

import _ "embed"

//go:embed sigsim/config.json
var defaultConfig []byte

//go:embed sigsim/scenario.yaml
var exampleScenario []byte

// GetDefaultConfig 默认应用配置（JSON）
func GetDefaultConfig() []byte {
	return defaultConfig
}

// GetExampleScenario 示例场景（YAML）
func GetExampleScenario() []byte {
	return exampleScenario
}
