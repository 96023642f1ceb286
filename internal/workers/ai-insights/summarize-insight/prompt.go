// internal/workers/ai-insights/summarize-insight/prompt.go
package summarizeinsight

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemInstruction = "你是一名销售数据分析师。只能依据提供的查询结果回答，不得编造任何数字或事实。" +
	"用两到三句话说明结果，如有必要可以再给出一条简短建议。"

func buildPrompt(input *Input) (string, error) {
	filters, err := json.Marshal(input.Filters)
	if err != nil {
		return "", fmt.Errorf("encode filters: %w", err)
	}
	result, err := json.Marshal(input.Result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "用户问题：%s\n", input.Question)
	fmt.Fprintf(&sb, "意图：%s\n", input.Intent)
	fmt.Fprintf(&sb, "筛选条件：%s\n", filters)
	fmt.Fprintf(&sb, "查询结果：%s\n", result)
	sb.WriteString("请基于以上数据作答。")
	return sb.String(), nil
}
