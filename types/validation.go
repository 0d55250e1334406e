package types

// --- 常量定义 ---

const (
	StatusApproved = "APPROVED"
	StatusFlagged  = "FLAGGED"
)

// PO 状态
const (
	POStatusOpen   = "OPEN"
	POStatusClosed = "CLOSED"
)

// 发票处理状态（invoices 表）
const (
	InvoiceStatusProcessing = "PROCESSING"
	InvoiceStatusStale      = "STALE"
)

// --- 结构体定义 ---

// ValidationResult 校验引擎的结论，构造后不可变
//
// 不变式: IsValid == (len(Errors) == 0)。
// Errors 的顺序就是规则执行顺序: 供应商 → PO 存在性 → 价格 → 条目。
// Advisories 是建议性提示（如超出自动付款额度），不影响 IsValid。
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	Status         string   `json:"status"` // APPROVED / FLAGGED
	Errors         []string `json:"errors"`
	Advisories     []string `json:"advisories,omitempty"`
	RequiresReview bool     `json:"requires_review"` // 有 advisory 时为 true
}

// AuditSearchRequest 审计检索请求
type AuditSearchRequest struct {
	Query      string `json:"query"`      // 对 notes/errors 做 BM25
	Decision   string `json:"decision"`   // PAY / FLAG / REJECTED
	VendorName string `json:"vendor_name"`
	DateStart  string `json:"date_start"` // YYYY-MM-DD
	DateEnd    string `json:"date_end"`
	TopK       int    `json:"top_k"`
}

// AuditHit 审计检索命中
type AuditHit struct {
	InvoiceID   string   `json:"invoice_id"`
	FileName    string   `json:"file_name"`
	VendorName  string   `json:"vendor_name"`
	PONumber    string   `json:"po_number,omitempty"`
	TotalAmount float64  `json:"total_amount"`
	Decision    string   `json:"decision"`
	Notes       []string `json:"notes"`
	ProcessedAt string   `json:"processed_at"`
	Score       float64  `json:"score"`
}
