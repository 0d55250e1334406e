package vars

import (
	"os"
	"strconv"
)

// GetEnv 获取环境变量，如果不存在则返回默认值
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}

func GetEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return fallback
}

const (
	// 模型名称
	QWEN7B = "qwen2.5:7b"
	QWEN3B = "qwen2.5:3b"
	GPT4O  = "gpt-4o-mini"

	// LLM 提供方
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	// ES 审计索引名称
	AuditIndex = "invoice_audit_v1"
)

// 环境变量配置（支持 Docker 部署）
var (
	// LLM
	LLMProvider = GetEnv("LLM_PROVIDER", ProviderOllama)
	OLLAMA_PATH = GetEnv("OLLAMA_PATH", "http://localhost:11434")
	OLLAMAMODEL = GetEnv("OLLAMA_MODEL", QWEN7B)
	OPENAI_KEY  = GetEnv("OPENAI_API_KEY", "")
	OPENAIMODEL = GetEnv("OPENAI_MODEL", GPT4O)

	// PG
	PGUSER = GetEnv("PGUSER", "root")
	PGPWD  = GetEnv("PGPWD", "root")
	PGDB   = GetEnv("PGDB", "apDB")
	PGHOST = GetEnv("PGHOST", "localhost")
	PGPORT = GetEnv("PGPORT", "5432")

	// ES
	ESADDR = GetEnv("ESADDR", "http://localhost:9200")

	// 下游
	SlackWebhookURL = GetEnv("SLACK_WEBHOOK_URL", "")
	StripeSecretKey = GetEnv("STRIPE_SECRET_KEY", "")

	// 发票收件目录（代替 IMAP 轮询，邮件侧只负责把 PDF 落到这个目录）
	InboxDir     = GetEnv("INBOX_DIR", "./invoices_input")
	PaidDir      = GetEnv("PAID_DIR", "./processed/paid")
	FlaggedDir   = GetEnv("FLAGGED_DIR", "./processed/flagged")
	FailedPayDir = GetEnv("FAILED_PAY_DIR", "./processed/failed_payments")

	// 校验策略（可配置，不要在业务代码里写死）
	VendorMatchThreshold = GetEnvInt("VENDOR_MATCH_THRESHOLD", 85)
	PriceTolerance       = GetEnvFloat("PRICE_TOLERANCE", 1.0)
	AutoPayLimit         = GetEnvFloat("AUTO_PAY_LIMIT", 10000.0)
	MaxRetries           = GetEnvInt("MAX_RETRIES", 2)
	EnableReflection     = GetEnvBool("ENABLE_REFLECTION", true)
)

// 提示词
const (
	EXTRACT = `
你是一个专业的财务数据录入员。请从以下发票文本中提取关键结构化信息。

请严格按照以下规则提取字段 (JSON格式):

1. **vendor_name**: 供应商名称 (发票抬头 From/Vendor 的全称)。
2. **po_number**: 采购订单号 (如 "PO-001"，一般出现在 "PO Ref"/"PO Number" 附近)。发票上没有时返回 null。
3. **total_amount**: 发票总金额 (纯数字)。去除货币符号和千分位逗号，如 "$6,500.00" → 6500.00。
4. **currency**: 货币代码 (USD, INR, EUR, GBP)。如果只出现符号 ($, ₹, €, £)，转换为对应代码。
5. **date**: 发票日期 (格式: YYYY-MM-DD)。未提及时留空字符串。
6. **items**: 条目描述列表 (字符串数组)，如 ["5x MacBook Pro M3"]。没有明细时返回空数组。

这是第 {{.Attempt}} 次尝试，请仔细核对数字。

文本内容:
{{.Content}}

Output JSON only:
`
)
