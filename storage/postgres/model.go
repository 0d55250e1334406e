package postgres

import (
	"time"

	"ap-agent/types"
)

// Vendor 供应商主数据（只读参考数据，流水线不会写）
type Vendor struct {
	VendorID     int     `gorm:"column:vendor_id;primaryKey;autoIncrement"`
	Name         string  `gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	ContactEmail string  `gorm:"column:contact_email;type:varchar(255)"`
	TrustScore   int     `gorm:"column:trust_score;default:50"`
	TypicalPrice float64 `gorm:"column:typical_price;type:decimal(15,2);default:0"` // 异常检测基线
}

func (Vendor) TableName() string {
	return "vendors"
}

// PurchaseOrder 采购订单，对账的"事实来源"
type PurchaseOrder struct {
	PONumber           string  `gorm:"column:po_number;primaryKey;type:varchar(50)"`
	VendorID           int     `gorm:"column:vendor_id;index"`
	ItemDescription    string  `gorm:"column:item_description;type:text"`
	Quantity           int     `gorm:"column:quantity"`
	AgreedPricePerUnit float64 `gorm:"column:agreed_price_per_unit;type:decimal(15,2)"`
	TotalAmount        float64 `gorm:"column:total_amount;type:decimal(15,2)"`
	Status             string  `gorm:"column:status;type:varchar(20);default:OPEN"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

func (p *PurchaseOrder) IsOpen() bool {
	return p.Status == types.POStatusOpen
}

// Invoice 每次处理完落一条记录
type Invoice struct {
	InvoiceID            string    `gorm:"column:invoice_id;primaryKey;type:uuid"`
	FileName             string    `gorm:"column:file_name;type:varchar(255)"`
	PONumber             string    `gorm:"column:po_number;type:varchar(50);index"`
	VendorNameExtracted  string    `gorm:"column:vendor_name_extracted;type:varchar(255);index"`
	TotalAmountExtracted float64   `gorm:"column:total_amount_extracted;type:decimal(15,2)"`
	Currency             string    `gorm:"column:currency;type:varchar(10)"`
	Status               string    `gorm:"column:status;type:varchar(20);default:PROCESSING;index"`
	Decision             string    `gorm:"column:decision;type:varchar(20);index"` // PAY / FLAG / REJECTED
	RiskFlag             string    `gorm:"column:risk_flag;type:varchar(50)"`
	ProcessedAt          time.Time `gorm:"column:processed_at"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (Invoice) TableName() string {
	return "invoices"
}

// AuditLog 审计流水，每条规则结论/动作一行
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	InvoiceID string    `gorm:"column:invoice_id;type:uuid;index"`
	Action    string    `gorm:"column:action;type:varchar(50)"`
	Reason    string    `gorm:"column:reason;type:text"`
	Timestamp time.Time `gorm:"column:timestamp;autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// LedgerEntry 总账分录（付款成功后写入，代替原来的 CSV 台账）
type LedgerEntry struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	VendorName  string    `gorm:"column:vendor_name;type:varchar(255);index"`
	Amount      float64   `gorm:"column:amount;type:decimal(15,2)"`
	Currency    string    `gorm:"column:currency;type:varchar(10)"`
	GLCode      string    `gorm:"column:gl_code;type:varchar(100)"`
	POReference string    `gorm:"column:po_reference;type:varchar(50)"`
	TransferID  string    `gorm:"column:transfer_id;type:varchar(100)"`
	Status      string    `gorm:"column:status;type:varchar(20);default:POSTED"`
	CreatedAt   time.Time
}

func (LedgerEntry) TableName() string {
	return "general_ledger"
}
