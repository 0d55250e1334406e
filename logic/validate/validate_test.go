package validate_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"ap-agent/logic/validate"
	"ap-agent/storage/postgres"
	"ap-agent/types"
)

// fakeStore 内存参考数据替身，顺便统计 PO 查询次数
type fakeStore struct {
	vendors   []string
	orders    map[string]*postgres.PurchaseOrder
	vendorErr error
	poErr     error
	poCalls   int
}

func (f *fakeStore) FindVendorNames(ctx context.Context) ([]string, error) {
	if f.vendorErr != nil {
		return nil, f.vendorErr
	}
	return f.vendors, nil
}

func (f *fakeStore) GetPurchaseOrder(ctx context.Context, poNumber string) (*postgres.PurchaseOrder, error) {
	f.poCalls++
	if f.poErr != nil {
		return nil, f.poErr
	}
	return f.orders[poNumber], nil
}

func seededStore() *fakeStore {
	return &fakeStore{
		vendors: []string{"TechSupplies Ltd", "Office Coffee Co"},
		orders: map[string]*postgres.PurchaseOrder{
			"PO-001": {PONumber: "PO-001", VendorID: 101, ItemDescription: "MacBook Pro M3", Quantity: 5, AgreedPricePerUnit: 1000.0, TotalAmount: 5000.0, Status: "OPEN"},
			"PO-002": {PONumber: "PO-002", VendorID: 102, ItemDescription: "Premium Coffee Beans", Quantity: 100, AgreedPricePerUnit: 10.0, TotalAmount: 1000.0, Status: "OPEN"},
		},
	}
}

func testConfig() validate.Config {
	return validate.Config{
		VendorMatchThreshold: 85,
		PriceTolerance:       1.0,
		AutoPayLimit:         10000.0,
	}
}

func happyInvoice() *types.InvoiceRecord {
	return &types.InvoiceRecord{
		VendorName:  "TechSupplies Ltd",
		PONumber:    "PO-001",
		TotalAmount: 5000.00,
		Currency:    "USD",
		Date:        "2024-11-01",
		Items:       []string{"5x MacBook Pro M3"},
	}
}

func TestValidate_HappyPath(t *testing.T) {
	v := validate.NewValidator(seededStore(), testConfig())

	result, err := v.Validate(context.Background(), happyInvoice())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Errorf("IsValid = false, want true (errors: %v)", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", result.Errors)
	}
	if result.Status != types.StatusApproved {
		t.Errorf("Status = %q, want %q", result.Status, types.StatusApproved)
	}
	if result.RequiresReview {
		t.Error("RequiresReview = true, want false")
	}
}

func TestValidate_PriceMismatch(t *testing.T) {
	v := validate.NewValidator(seededStore(), testConfig())
	invoice := happyInvoice()
	invoice.TotalAmount = 6500.00

	result, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Price Mismatch") {
		t.Errorf("error %q does not mention the price mismatch", result.Errors[0])
	}
	// 两个金额都要出现在原因里
	if !strings.Contains(result.Errors[0], "6500.00") || !strings.Contains(result.Errors[0], "5000.00") {
		t.Errorf("error %q should name both amounts", result.Errors[0])
	}
	if result.Status != types.StatusFlagged {
		t.Errorf("Status = %q, want %q", result.Status, types.StatusFlagged)
	}
}

func TestValidate_UnknownVendor(t *testing.T) {
	v := validate.NewValidator(seededStore(), testConfig())
	invoice := happyInvoice()
	invoice.VendorName = "Evil Corp LLC"

	result, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}

	var vendorErrs []string
	for _, e := range result.Errors {
		if strings.Contains(e, "Vendor") {
			vendorErrs = append(vendorErrs, e)
		}
	}
	if len(vendorErrs) != 1 {
		t.Fatalf("vendor errors = %v, want exactly one", vendorErrs)
	}
	// 被拒时也要写清楚尝试匹配的名字和最接近的候选
	if !strings.Contains(vendorErrs[0], "Evil Corp LLC") {
		t.Errorf("error %q should name the input vendor", vendorErrs[0])
	}
	if !strings.Contains(vendorErrs[0], "Best match:") {
		t.Errorf("error %q should name the best candidate and score", vendorErrs[0])
	}
}

func TestValidate_MissingPO(t *testing.T) {
	store := seededStore()
	v := validate.NewValidator(store, testConfig())
	invoice := happyInvoice()
	invoice.PONumber = ""

	result, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Missing PO") {
		t.Errorf("Errors = %v, want only the missing-PO reason", result.Errors)
	}
	// 没有 PO 号就不允许查参考库
	if store.poCalls != 0 {
		t.Errorf("poCalls = %d, want 0", store.poCalls)
	}
}

func TestValidate_PONotFound(t *testing.T) {
	store := seededStore()
	v := validate.NewValidator(store, testConfig())
	invoice := happyInvoice()
	invoice.PONumber = "PO-999"

	result, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "does not exist") {
		t.Errorf("Errors = %v, want only the PO-not-found reason", result.Errors)
	}
	// PO 不存在时不能再跑价格/条目检查
	for _, e := range result.Errors {
		if strings.Contains(e, "Price") || strings.Contains(e, "Item") {
			t.Errorf("unexpected downstream error after missing PO: %q", e)
		}
	}
	if store.poCalls != 1 {
		t.Errorf("poCalls = %d, want 1", store.poCalls)
	}
}

func TestValidate_ErrorsAccumulateInRuleOrder(t *testing.T) {
	v := validate.NewValidator(seededStore(), testConfig())
	// 供应商不认识 + 价格不对 + 条目不匹配，三条都要出现
	invoice := &types.InvoiceRecord{
		VendorName:  "Evil Corp LLC",
		PONumber:    "PO-001",
		TotalAmount: 9999.00,
		Currency:    "USD",
		Items:       []string{"Premium Coffee Beans"},
	}

	result, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("Errors = %v, want 3", result.Errors)
	}
	wantOrder := []string{"Vendor", "Price Mismatch", "Item Mismatch"}
	for i, marker := range wantOrder {
		if !strings.Contains(result.Errors[i], marker) {
			t.Errorf("Errors[%d] = %q, want it to contain %q", i, result.Errors[i], marker)
		}
	}
}

func TestValidate_HighValueAdvisoryDoesNotInvalidate(t *testing.T) {
	store := seededStore()
	store.orders["PO-003"] = &postgres.PurchaseOrder{
		PONumber: "PO-003", VendorID: 101, ItemDescription: "MacBook Pro M3",
		Quantity: 20, AgreedPricePerUnit: 1000.0, TotalAmount: 20000.0, Status: "OPEN",
	}
	v := validate.NewValidator(store, testConfig())
	invoice := happyInvoice()
	invoice.PONumber = "PO-003"
	invoice.TotalAmount = 20000.00

	result, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Errorf("IsValid = false, want true (errors: %v)", result.Errors)
	}
	if len(result.Advisories) != 1 || !strings.Contains(result.Advisories[0], "auto-pay limit") {
		t.Errorf("Advisories = %v, want one auto-pay-limit advisory", result.Advisories)
	}
	if !result.RequiresReview {
		t.Error("RequiresReview = false, want true")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := validate.NewValidator(seededStore(), testConfig())
	invoice := happyInvoice()
	invoice.TotalAmount = 6500.00

	first, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	second, err := v.Validate(context.Background(), invoice)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("verdicts differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestValidate_InvariantIsValidMatchesErrors(t *testing.T) {
	v := validate.NewValidator(seededStore(), testConfig())
	invoices := []*types.InvoiceRecord{
		happyInvoice(),
		{VendorName: "Evil Corp LLC", PONumber: "PO-999", TotalAmount: 42, Currency: "USD"},
		{VendorName: "TechSupplies Ltd", TotalAmount: 5000, Currency: "USD"},
		{VendorName: "Office Coffee Co", PONumber: "PO-002", TotalAmount: 1000, Currency: "USD", Items: []string{"Premium Coffee Beans"}},
	}

	for i, invoice := range invoices {
		result, err := v.Validate(context.Background(), invoice)
		if err != nil {
			t.Fatalf("invoice %d: Validate() error = %v", i, err)
		}
		if result.IsValid != (len(result.Errors) == 0) {
			t.Errorf("invoice %d: IsValid = %v with %d errors", i, result.IsValid, len(result.Errors))
		}
	}
}

func TestValidate_StoreOutageIsNotARejection(t *testing.T) {
	outage := errors.New("connection refused")

	t.Run("vendor lookup fails", func(t *testing.T) {
		store := seededStore()
		store.vendorErr = outage
		v := validate.NewValidator(store, testConfig())

		result, err := v.Validate(context.Background(), happyInvoice())
		if err == nil {
			t.Fatal("Validate() error = nil, want infrastructure error")
		}
		if result != nil {
			t.Errorf("result = %+v, want nil on infrastructure fault", result)
		}
	})

	t.Run("po lookup fails", func(t *testing.T) {
		store := seededStore()
		store.poErr = outage
		v := validate.NewValidator(store, testConfig())

		result, err := v.Validate(context.Background(), happyInvoice())
		if err == nil {
			t.Fatal("Validate() error = nil, want infrastructure error")
		}
		if result != nil {
			t.Errorf("result = %+v, want nil on infrastructure fault", result)
		}
	})
}
