package handler

import (
	"fmt"
	"net/http"

	"ap-agent/api/response"
	"ap-agent/service"
	"ap-agent/types"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceSvc *service.InvoiceService
	auditSvc   *service.AuditService
}

func NewInvoiceHandler(invoiceSvc *service.InvoiceService, auditSvc *service.AuditService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceSvc: invoiceSvc,
		auditSvc:   auditSvc,
	}
}

// Upload 上传 PDF 发票接口，支持一次传多个文件
func (h *InvoiceHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, "文件上传失败或格式错误")
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		response.Fail(c, "未接收到文件，请检查参数名是否为 'file'")
		return
	}
	fmt.Printf(">>> [DEBUG] 收到文件列表，共 %d 个文件\n", len(files))

	var results []*service.ProcessResult
	var errorFiles []string
	for _, file := range files {
		fmt.Printf(">>> [DEBUG] ---> 开始处理文件: %s, 大小: %d\n", file.Filename, file.Size)

		result, err := h.invoiceSvc.ProcessUpload(c.Request.Context(), file)
		if err != nil {
			fmt.Printf(">>> [ERROR] 文件 %s 处理失败: %v\n", file.Filename, err)
			errorFiles = append(errorFiles, file.Filename)
			// 单个文件失败不影响其他文件
			continue
		}
		results = append(results, result)
	}

	if len(results) == 0 && len(errorFiles) > 0 {
		response.Fail(c, fmt.Sprintf("所有文件处理失败: %v", errorFiles))
		return
	}

	response.Success(c, map[string]any{
		"results":     results,
		"total_count": len(results),
		"fail_files":  errorFiles,
	})
}

// ProcessTextRequest 原始文本入口（邮件正文、已有 OCR 结果等）
type ProcessTextRequest struct {
	FileName    string `json:"file_name"`
	InvoiceText string `json:"invoice_text" binding:"required"`
}

// ProcessText 直接提交发票文本
func (h *InvoiceHandler) ProcessText(c *gin.Context) {
	var req ProcessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "参数错误: invoice_text 不能为空")
		return
	}
	if req.FileName == "" {
		req.FileName = "inline-text"
	}

	result, err := h.invoiceSvc.ProcessText(c.Request.Context(), req.FileName, req.InvoiceText)
	if err != nil {
		if result != nil {
			// 有终态结论但带基础设施告警，结论照样返回
			response.Success(c, map[string]any{"result": result, "warning": err.Error()})
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, result)
}

// AuditSearch 审计检索接口
func (h *InvoiceHandler) AuditSearch(c *gin.Context) {
	var req types.AuditSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "参数错误")
		return
	}

	hits, err := h.auditSvc.Search(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.Success(c, map[string]any{"hits": hits, "total": len(hits)})
}

// ListInvoices 最近处理记录
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	decision := c.Query("decision")
	invoices, err := h.auditSvc.RecentInvoices(c.Request.Context(), decision, 50)
	if err != nil {
		response.Fail(c, err.Error())
		return
	}
	response.Success(c, invoices)
}
