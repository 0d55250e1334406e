package router

import (
	"ap-agent/api/handler"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, invoiceH *handler.InvoiceHandler) {
	api := r.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/upload", invoiceH.Upload)
			invoice.POST("/process", invoiceH.ProcessText)
			invoice.GET("/list", invoiceH.ListInvoices)
		}
		audit := api.Group("/audit")
		{
			audit.POST("/search", invoiceH.AuditSearch)
		}
	}
}
