package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ap-agent/types"
	"ap-agent/vars"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// LLMExtractor 把发票原始文本交给 LLM 提取结构化字段
// 流水线只依赖它的 Extract 方法，失败一律返回 error，不往外抛 panic
type LLMExtractor struct {
	chatModel model.ToolCallingChatModel
}

func NewLLMExtractor(chatModel model.ToolCallingChatModel) *LLMExtractor {
	return &LLMExtractor{chatModel: chatModel}
}

// Extract attempt 从 1 开始，重试时会注入到提示词里
func (e *LLMExtractor) Extract(ctx context.Context, invoiceText string, attempt int) (*types.InvoiceRecord, error) {
	content := invoiceText
	if len(content) > 10000 {
		content = content[:10000]
	}

	prompt := strings.ReplaceAll(vars.EXTRACT, "{{.Content}}", content)
	prompt = strings.ReplaceAll(prompt, "{{.Attempt}}", strconv.Itoa(attempt))

	resp, err := e.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("llm generate failed: %w", err)
	}

	return ParseInvoiceJSON(resp.Content)
}

// ParseInvoiceJSON 清洗 LLM 输出并转成强类型记录
// LLM 可能带 markdown 围栏、把金额写成字符串、把货币写成符号，这里统一兜底
func ParseInvoiceJSON(raw string) (*types.InvoiceRecord, error) {
	jsonStr := strings.TrimSpace(raw)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")

	// 兜底：截取首尾大括号之间的内容
	start := strings.Index(jsonStr, "{")
	end := strings.LastIndex(jsonStr, "}")
	if start != -1 && end != -1 && end > start {
		jsonStr = jsonStr[start : end+1]
	}

	var rawData types.InvoiceRawData
	if err := json.Unmarshal([]byte(jsonStr), &rawData); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %v, raw: %s", err, jsonStr)
	}
	if rawData.VendorName == "" {
		return nil, fmt.Errorf("llm did not return vendor_name, raw: %s", jsonStr)
	}

	record := &types.InvoiceRecord{
		VendorName:  strings.TrimSpace(rawData.VendorName),
		TotalAmount: coerceAmount(rawData.TotalAmount),
		Currency:    NormalizeCurrency(rawData.Currency),
		Date:        strings.TrimSpace(rawData.Date),
		Items:       rawData.Items,
	}
	if rawData.PONumber != nil {
		record.PONumber = strings.TrimSpace(*rawData.PONumber)
	}
	return record, nil
}

// coerceAmount 金额清洗：LLM 可能返回数字，也可能返回 "6,500.00" 或 "$6500" 这样的字符串
func coerceAmount(v interface{}) float64 {
	switch amount := v.(type) {
	case float64:
		return amount
	case string:
		clean := strings.TrimSpace(amount)
		clean = strings.ReplaceAll(clean, ",", "")
		clean = strings.TrimLeft(clean, "$₹€£ ")
		if val, err := strconv.ParseFloat(clean, 64); err == nil {
			return val
		}
	}
	return 0
}

// 货币符号 → 代码映射，未知输入默认 USD
var currencyMapping = map[string]string{
	"$": "USD", "USD": "USD", "usd": "USD",
	"₹": "INR", "INR": "INR", "inr": "INR",
	"€": "EUR", "EUR": "EUR", "eur": "EUR",
	"£": "GBP", "GBP": "GBP", "gbp": "GBP",
}

func NormalizeCurrency(currency string) string {
	clean := strings.TrimSpace(currency)
	if code, ok := currencyMapping[clean]; ok {
		return code
	}
	return "USD"
}
