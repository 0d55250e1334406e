package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Result 付款执行结果
type Result struct {
	Status     string `json:"status"` // success / failed
	TransferID string `json:"transfer_id,omitempty"`
	ReceiptURL string `json:"receipt_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StripeGateway Stripe 付款通道，只在流水线给出 PAY 之后由 service 层调用
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

// ProcessPayment 创建并确认一笔 PaymentIntent
// 金额用 decimal 转分，避免 float 截断出一分钱的偏差
func (g *StripeGateway) ProcessPayment(ctx context.Context, amount float64, currency, vendorName, invoiceRef string) *Result {
	amountCents := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(strings.ToLower(currency)),
		Description:   stripe.String(fmt.Sprintf("Invoice Payment: %s to %s", invoiceRef, vendorName)),
		PaymentMethod: stripe.String("pm_card_visa"),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("vendor", vendorName)
	params.AddMetadata("po_number", invoiceRef)
	params.AddMetadata("status", "Auto-Approved")

	intent, err := paymentintent.New(params)
	if err != nil {
		return &Result{Status: "failed", Error: err.Error()}
	}

	return &Result{
		Status:     "success",
		TransferID: intent.ID,
		ReceiptURL: fmt.Sprintf("https://dashboard.stripe.com/test/payments/%s", intent.ID),
	}
}
