package postgres

import (
	"context"
	"errors"
	"time"

	"ap-agent/types"

	"gorm.io/gorm"
)

// APRepo 封装应付账款相关表的所有操作
// 对流水线来说 vendors / purchase_orders 是只读的，写操作只发生在处理结束之后
type APRepo struct {
	db *gorm.DB
}

// NewAPRepo 构造函数
func NewAPRepo(db *gorm.DB) *APRepo {
	return &APRepo{db: db}
}

// FindVendorNames 返回全部已知供应商名称（给模糊匹配用）
// 返回顺序固定为主键序，保证匹配结果可复现
func (r *APRepo) FindVendorNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&Vendor{}).
		Order("vendor_id").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// GetVendorByName 精确查询供应商（取 trust_score / typical_price 时用）
func (r *APRepo) GetVendorByName(ctx context.Context, name string) (*Vendor, error) {
	var vendor Vendor
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetPurchaseOrder 按 PO 号查采购订单
// 未找到返回 (nil, nil)：业务上的"PO 不存在"不是基础设施错误，调用方必须区分这两种情况
func (r *APRepo) GetPurchaseOrder(ctx context.Context, poNumber string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("po_number = ?", poNumber).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// CreateInvoice 落一条处理记录
func (r *APRepo) CreateInvoice(ctx context.Context, inv *Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// DeleteInvoice 回滚用（ES 写入失败时删掉 PG 记录）
func (r *APRepo) DeleteInvoice(ctx context.Context, invoiceID string) error {
	return r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&Invoice{}).Error
}

// AppendAuditLog 批量写审计流水
func (r *APRepo) AppendAuditLog(ctx context.Context, invoiceID, action string, reasons []string) error {
	if len(reasons) == 0 {
		return nil
	}
	logs := make([]AuditLog, 0, len(reasons))
	for _, reason := range reasons {
		logs = append(logs, AuditLog{InvoiceID: invoiceID, Action: action, Reason: reason})
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

// CreateLedgerEntry 付款成功后写总账
func (r *APRepo) CreateLedgerEntry(ctx context.Context, entry *LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListInvoices 按决策过滤最近的处理记录
func (r *APRepo) ListInvoices(ctx context.Context, decision string, limit int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	tx := r.db.WithContext(ctx).Model(&Invoice{}).Order("processed_at DESC").Limit(limit)
	if decision != "" {
		tx = tx.Where("decision = ?", decision)
	}
	var results []Invoice
	err := tx.Find(&results).Error
	return results, err
}

// ExpireStaleInvoices 定时任务批量处理卡在 PROCESSING 的记录
func (r *APRepo) ExpireStaleInvoices(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Invoice{}).
		Where("status = ? AND created_at < ?", types.InvoiceStatusProcessing, before).
		Update("status", types.InvoiceStatusStale)
	return result.RowsAffected, result.Error
}
