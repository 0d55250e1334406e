package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ap-agent/logic/ledger"
	"ap-agent/logic/notify"
	"ap-agent/logic/payment"
	"ap-agent/logic/pipeline"
	"ap-agent/storage/es"
	"ap-agent/storage/postgres"
	"ap-agent/types"
	"ap-agent/vars"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/google/uuid"
)

// cleanText 清洗 PDF 解析出的文本，去掉控制字符和多余空白
func cleanText(text string) string {
	re := regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	text = re.ReplaceAllString(text, "")

	re = regexp.MustCompile(`[ \t]+`)
	text = re.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// ProcessResult 单张发票处理的完整结果
type ProcessResult struct {
	InvoiceID string                 `json:"invoice_id"`
	FileName  string                 `json:"file_name,omitempty"`
	Outcome   *types.PipelineOutcome `json:"outcome"`
	Payment   *payment.Result        `json:"payment,omitempty"`
}

// InvoiceService 发票处理编排：解析 → 流水线 → 落库 → 审计索引 → 下游动作
type InvoiceService struct {
	repo     *postgres.APRepo
	pipe     *pipeline.Pipeline
	auditIdx *es.AuditIndexer
	gateway  *payment.StripeGateway
	ledger   *ledger.Ledger
	notifier *notify.SlackNotifier
}

// 构造函数：依赖注入
func NewInvoiceService(repo *postgres.APRepo, pipe *pipeline.Pipeline, auditIdx *es.AuditIndexer,
	gateway *payment.StripeGateway, l *ledger.Ledger, notifier *notify.SlackNotifier) *InvoiceService {
	return &InvoiceService{
		repo:     repo,
		pipe:     pipe,
		auditIdx: auditIdx,
		gateway:  gateway,
		ledger:   l,
		notifier: notifier,
	}
}

// ProcessUpload 处理 HTTP 上传的 PDF 发票
func (s *InvoiceService) ProcessUpload(ctx context.Context, fileHeader *multipart.FileHeader) (*ProcessResult, error) {
	srcFile, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer srcFile.Close()

	startTime := time.Now()
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser failed: %w", err)
	}
	docs, err := p.Parse(ctx, srcFile, parser.WithURI(fileHeader.Filename))
	if err != nil {
		return nil, fmt.Errorf("parse pdf failed: %w", err)
	}
	fmt.Printf(">>> [性能] PDF 解析耗时: %v\n", time.Since(startTime))

	var sb strings.Builder
	for _, doc := range docs {
		if doc.MetaData == nil {
			doc.MetaData = make(map[string]any)
		}
		doc.MetaData[file.MetaKeyFileName] = fileHeader.Filename
		sb.WriteString(doc.Content)
		sb.WriteString("\n")
	}

	return s.ProcessText(ctx, fileHeader.Filename, sb.String())
}

// ProcessText 核心路径：跑流水线，然后落库、进审计索引、触发下游动作
func (s *InvoiceService) ProcessText(ctx context.Context, fileName, invoiceText string) (*ProcessResult, error) {
	text := cleanText(invoiceText)
	if text == "" {
		return nil, fmt.Errorf("empty invoice text")
	}

	fmt.Printf(">>> [DEBUG] 开始处理发票: %s\n", fileName)
	pipeStart := time.Now()
	outcome, runErr := s.pipe.Run(ctx, text)
	fmt.Printf(">>> [性能] 流水线耗时: %v, 决策: %s (尝试 %d 次)\n",
		time.Since(pipeStart), outcome.FinalDecision, outcome.Attempts)
	if runErr != nil {
		// 基础设施故障：结论仍是终态，但必须告诉调用方这不是业务拒绝
		fmt.Printf(">>> [ERROR] 流水线基础设施故障: %v\n", runErr)
	}

	invoiceID := uuid.New().String()
	result := &ProcessResult{InvoiceID: invoiceID, FileName: fileName, Outcome: outcome}

	// 1. 落 PG 处理记录
	row := &postgres.Invoice{
		InvoiceID:   invoiceID,
		FileName:    fileName,
		Status:      types.InvoiceStatusProcessing,
		Decision:    outcome.FinalDecision,
		ProcessedAt: time.Now(),
	}
	if outcome.ExtractedData != nil {
		row.PONumber = outcome.ExtractedData.PONumber
		row.VendorNameExtracted = outcome.ExtractedData.VendorName
		row.TotalAmountExtracted = outcome.ExtractedData.TotalAmount
		row.Currency = outcome.ExtractedData.Currency
	}
	if outcome.ValidationResult != nil && outcome.ValidationResult.RequiresReview {
		row.RiskFlag = "HIGH_VALUE"
	}
	if err := s.repo.CreateInvoice(ctx, row); err != nil {
		return nil, fmt.Errorf("postgresql存储失败: %w", err)
	}

	// 2. 审计流水
	if err := s.repo.AppendAuditLog(ctx, invoiceID, outcome.FinalDecision, outcome.AnalysisNotes); err != nil {
		fmt.Printf(">>> [WARN] 审计流水写入失败: %v\n", err)
	}

	// 3. ES 审计索引，失败则回滚 PG 记录
	if err := s.auditIdx.IndexOutcome(ctx, invoiceID, fileName, outcome); err != nil {
		_ = s.repo.DeleteInvoice(ctx, invoiceID)
		return nil, fmt.Errorf("es存储失败，已回滚PG记录: %w", err)
	}

	// 4. 下游分发（流水线之外的动作，按终态决策路由）
	s.dispatch(ctx, result)

	return result, runErr
}

// dispatch PAY → 付款+记账；FLAG/REJECTED → Slack 告警
func (s *InvoiceService) dispatch(ctx context.Context, result *ProcessResult) {
	outcome := result.Outcome

	switch outcome.FinalDecision {
	case types.DecisionPay:
		data := outcome.ExtractedData
		poRef := data.PONumber
		if poRef == "" {
			poRef = "No-PO"
		}

		fmt.Printf("💸 Processing Payment of %.2f %s for %s...\n", data.TotalAmount, data.Currency, data.VendorName)
		payResult := s.gateway.ProcessPayment(ctx, data.TotalAmount, data.Currency, data.VendorName, poRef)
		result.Payment = payResult

		if payResult.Status != "success" {
			fmt.Printf(">>> [ERROR] 付款失败: %s\n", payResult.Error)
			if err := s.notifier.AlertPaymentError(ctx, result.FileName, payResult.Error); err != nil {
				fmt.Printf(">>> [WARN] Slack 通知失败: %v\n", err)
			}
			return
		}

		fmt.Printf("💰 PAYMENT SENT! ID: %s\n", payResult.TransferID)
		if err := s.ledger.Post(ctx, data.VendorName, data.TotalAmount, data.Currency, poRef, payResult.TransferID); err != nil {
			fmt.Printf(">>> [WARN] 总账写入失败: %v\n", err)
		}

	case types.DecisionFlag, types.DecisionRejected:
		if err := s.notifier.AlertActionRequired(ctx, result.FileName, outcome.FinalDecision, outcome.AnalysisNotes); err != nil {
			fmt.Printf(">>> [WARN] Slack 通知失败: %v\n", err)
		}
	}
}

// ProcessFile 处理落在收件目录里的 PDF（cron 轮询入口），按决策归档文件
func (s *InvoiceService) ProcessFile(ctx context.Context, path string) (*ProcessResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create pdf parser failed: %w", err)
	}
	docs, err := p.Parse(ctx, f, parser.WithURI(path))
	f.Close()
	if err != nil {
		// 损坏的 PDF 直接归档到 failed，避免轮询反复踩同一个坑
		_ = moveFile(path, vars.FailedPayDir)
		return nil, fmt.Errorf("parse pdf failed: %w", err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.Content)
		sb.WriteString("\n")
	}

	result, err := s.ProcessText(ctx, filepath.Base(path), sb.String())
	if err != nil {
		return nil, err
	}

	// 按终态决策归档
	dest := vars.FlaggedDir
	if result.Outcome.FinalDecision == types.DecisionPay {
		dest = vars.PaidDir
		if result.Payment != nil && result.Payment.Status != "success" {
			dest = vars.FailedPayDir
		}
	}
	if err := moveFile(path, dest); err != nil {
		fmt.Printf(">>> [WARN] 归档失败: %v\n", err)
	} else {
		fmt.Printf("📂 Moved to: %s\n", dest)
	}
	return result, nil
}

// moveFile 目标已存在时加时间戳重命名（invoice.pdf → invoice_1699999999.pdf）
func moveFile(src, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	fileName := filepath.Base(src)
	destPath := filepath.Join(destDir, fileName)

	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(fileName)
		base := strings.TrimSuffix(fileName, ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext))
	}
	return os.Rename(src, destPath)
}
