package ledger

import (
	"context"
	"fmt"
	"log"

	"ap-agent/storage/postgres"
)

// GL 科目映射（简化的自动归类）
var glMapping = map[string]string{
	"TechSupplies Ltd": "6001 - Hardware/IT Expense",
	"Office Coffee Co": "6105 - Office Supplies",
	"Evil Corp LLC":    "9999 - SUSPICIOUS/UNMAPPED",
}

const defaultGLCode = "6000 - General Expense"

// GLCode 按供应商取总账科目，未映射的进通用费用科目
func GLCode(vendorName string) string {
	if code, ok := glMapping[vendorName]; ok {
		return code
	}
	return defaultGLCode
}

// Ledger 总账记账，付款成功后追加分录
type Ledger struct {
	repo *postgres.APRepo
}

func NewLedger(repo *postgres.APRepo) *Ledger {
	return &Ledger{repo: repo}
}

// Post 记一笔已付款分录
func (l *Ledger) Post(ctx context.Context, vendorName string, amount float64, currency, poRef, transferID string) error {
	entry := &postgres.LedgerEntry{
		VendorName:  vendorName,
		Amount:      amount,
		Currency:    currency,
		GLCode:      GLCode(vendorName),
		POReference: poRef,
		TransferID:  transferID,
		Status:      "POSTED",
	}
	if err := l.repo.CreateLedgerEntry(ctx, entry); err != nil {
		return fmt.Errorf("ledger post failed: %w", err)
	}
	log.Printf("📒 Transaction %s recorded in General Ledger (%s)", transferID, entry.GLCode)
	return nil
}
