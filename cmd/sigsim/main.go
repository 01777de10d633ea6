// Command sigsim 多因子签名收集模拟器
//
// 从 YAML 场景构建档案与载荷，用脚本化的模拟用户驱动签名收集器，
// 并以表格或 JSON 输出结果。
package main

func main() {
	Execute()
}
