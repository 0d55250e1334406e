package types

// InvoiceRawData LLM 输出的原始 JSON 结构（弱类型，金额可能是数字也可能是字符串）
type InvoiceRawData struct {
	VendorName  string      `json:"vendor_name" jsonschema:"description=供应商全称,required"`
	PONumber    *string     `json:"po_number" jsonschema:"description=采购订单号，发票上没有时返回 null"`
	TotalAmount interface{} `json:"total_amount" jsonschema:"description=发票总金额，提取纯数字"`
	Currency    string      `json:"currency" jsonschema:"description=货币代码，如 USD、INR、EUR"`
	Date        string      `json:"date" jsonschema:"description=发票日期，尽量转换为YYYY-MM-DD格式"`
	Items       []string    `json:"items" jsonschema:"description=发票条目描述列表"`
}

// InvoiceRecord 清洗后的强类型发票数据，产出后不再修改
type InvoiceRecord struct {
	VendorName  string   `json:"vendor_name"`
	PONumber    string   `json:"po_number,omitempty"` // 空串表示发票上没有 PO 号
	TotalAmount float64  `json:"total_amount"`
	Currency    string   `json:"currency"`
	Date        string   `json:"date,omitempty"`
	Items       []string `json:"items"`
}

// HasPO 发票上是否带了 PO 号
func (r *InvoiceRecord) HasPO() bool {
	return r.PONumber != ""
}

// 终态决策
const (
	DecisionPay      = "PAY"      // 校验全部通过，直接进入付款
	DecisionFlag     = "FLAG"     // 校验通过但超出自动付款额度，需要人工签字
	DecisionRejected = "REJECTED" // 校验失败或提取失败
)

// PipelineOutcome 流水线的最终产物，跑完后冻结交给调用方
type PipelineOutcome struct {
	FinalDecision    string            `json:"final_decision"`
	ExtractedData    *InvoiceRecord    `json:"extracted_data,omitempty"`    // nil = 提取彻底失败
	ValidationResult *ValidationResult `json:"validation_result,omitempty"` // nil = 没走到校验
	AnalysisNotes    []string          `json:"analysis_notes"`              // 非 PAY 时至少一条
	Attempts         int               `json:"attempts"`
}
