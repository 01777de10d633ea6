package event

const (
	// defaultEnabled 默认启用事件总线
	defaultEnabled = true

	// defaultHistorySize 每个主题保留最近 256 条事件，供命令行回放运行过程
	defaultHistorySize = 256

	// maxHistorySize 历史记录上限
	maxHistorySize = 10000
)
