// internal/workers/ai-insights/plan-intent/prompt.go
package planintent

import (
	"fmt"
	"strings"
	"time"
)

var intentDescriptions = []struct {
	intent string
	desc   string
}{
	{"count_opportunities", "统计符合条件的商机数量"},
	{"sum_expected_amount", "汇总符合条件的商机预计金额"},
	{"status_breakdown", "按状态分组统计商机数量"},
}

func buildPrompt(question string, today time.Time) string {
	var sb strings.Builder

	sb.WriteString("你是 CRM 系统的数据查询规划助手。请把用户的问题映射为以下三种意图之一：\n")
	for _, d := range intentDescriptions {
		fmt.Fprintf(&sb, "- %s：%s\n", d.intent, d.desc)
	}

	sb.WriteString("\n同时推断可选的筛选条件：\n")
	sb.WriteString("- status：商机状态列表，可选值 new、qualified、proposition、negotiation、closed_won、closed_lost\n")
	sb.WriteString("- timeframe：时间范围。scope 为 all_time；或 last_days 并给出 lastDays 天数；或 between 并给出 startDate、endDate（YYYY-MM-DD）\n")
	sb.WriteString("无法确定的筛选条件请省略，不要猜测。rationale 用一句话说明判断依据。\n\n")

	fmt.Fprintf(&sb, "今天是 %s。\n", today.Format("2006-01-02"))
	fmt.Fprintf(&sb, "用户问题：%s\n", question)

	return sb.String()
}
