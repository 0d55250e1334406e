package validate

import (
	"context"
	"fmt"
	"math"

	"ap-agent/logic/match"
	"ap-agent/storage/postgres"
	"ap-agent/types"
	"ap-agent/vars"
)

// ReferenceStore 校验引擎依赖的只读参考数据
// 注入接口而不是在这里开连接，方便测试替身，也避免隐藏的全局状态
type ReferenceStore interface {
	FindVendorNames(ctx context.Context) ([]string, error)
	// GetPurchaseOrder 未找到返回 (nil, nil)；非 nil error 表示基础设施故障
	GetPurchaseOrder(ctx context.Context, poNumber string) (*postgres.PurchaseOrder, error)
}

// Config 校验策略，全部可配置
type Config struct {
	VendorMatchThreshold int     // 供应商模糊匹配置信度下限
	PriceTolerance       float64 // 发票与 PO 总额允许的绝对差
	AutoPayLimit         float64 // 超过则给出人工复核 advisory
}

func DefaultConfig() Config {
	return Config{
		VendorMatchThreshold: vars.VendorMatchThreshold,
		PriceTolerance:       vars.PriceTolerance,
		AutoPayLimit:         vars.AutoPayLimit,
	}
}

type Validator struct {
	store ReferenceStore
	cfg   Config
}

func NewValidator(store ReferenceStore, cfg Config) *Validator {
	return &Validator{store: store, cfg: cfg}
}

// Validate 按固定顺序跑所有规则: 供应商 → PO 存在性 → 价格 → 条目
//
// 规则失败不是 error，全部累积进结论的 Errors，绝不短路——下游审计和告警
// 需要完整清单。返回 error 只代表参考数据源不可用（基础设施故障），
// 绝不把存储故障当成"发票被拒"。
func (v *Validator) Validate(ctx context.Context, invoice *types.InvoiceRecord) (*types.ValidationResult, error) {
	errs := []string{}
	advisories := []string{}

	// RULE 1: 供应商模糊匹配
	vendorNames, err := v.store.FindVendorNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("reference store unavailable: %w", err)
	}
	best := match.BestVendorMatch(invoice.VendorName, vendorNames)
	if best.Score < v.cfg.VendorMatchThreshold {
		// 即使拒绝也带上最接近的候选，方便审计
		errs = append(errs, fmt.Sprintf("❌ Vendor '%s' not found. (Best match: %s @ %d%%)",
			invoice.VendorName, best.Name, best.Score))
	}

	// RULE 2: PO 存在性（没有 PO 号就跳过 3/4）
	if invoice.HasPO() {
		po, err := v.store.GetPurchaseOrder(ctx, invoice.PONumber)
		if err != nil {
			return nil, fmt.Errorf("reference store unavailable: %w", err)
		}
		if po == nil {
			errs = append(errs, fmt.Sprintf("❌ PO Number '%s' does not exist.", invoice.PONumber))
		} else {
			// RULE 3: 价格容差
			if math.Abs(invoice.TotalAmount-po.TotalAmount) > v.cfg.PriceTolerance {
				errs = append(errs, fmt.Sprintf("⚠️ Price Mismatch: Invoice $%.2f vs PO $%.2f",
					invoice.TotalAmount, po.TotalAmount))
			}

			// RULE 4: 条目关键词交集
			if !match.LineItemsOverlap(invoice.Items, po.ItemDescription) {
				errs = append(errs, fmt.Sprintf("⚠️ Item Mismatch: Invoice items %v do not match PO description '%s'",
					invoice.Items, po.ItemDescription))
			}
		}
	} else {
		errs = append(errs, "⚠️ Missing PO Number on invoice.")
	}

	// 软门槛: 超出自动付款额度只出 advisory，不影响 IsValid
	if invoice.TotalAmount > v.cfg.AutoPayLimit {
		advisories = append(advisories, fmt.Sprintf("⚠️ High value: Invoice $%.2f exceeds auto-pay limit $%.2f, manual sign-off required.",
			invoice.TotalAmount, v.cfg.AutoPayLimit))
	}

	result := &types.ValidationResult{
		IsValid:        len(errs) == 0,
		Errors:         errs,
		Advisories:     advisories,
		RequiresReview: len(advisories) > 0,
	}
	if result.IsValid {
		result.Status = types.StatusApproved
	} else {
		result.Status = types.StatusFlagged
	}
	return result, nil
}
