package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ap-agent/types"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// AuditDoc 每张处理完的发票在 ES 里落一条审计文档
type AuditDoc struct {
	InvoiceID   string    `json:"invoice_id"`
	FileName    string    `json:"file_name"`
	VendorName  string    `json:"vendor_name"`
	PONumber    string    `json:"po_number,omitempty"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	Decision    string    `json:"decision"`
	Status      string    `json:"status,omitempty"` // 校验结论 APPROVED/FLAGGED
	Notes       []string  `json:"notes"`
	ProcessedAt time.Time `json:"processed_at"`
}

type AuditIndexer struct {
	client *elasticsearch.Client
	index  string
}

// GetClient 返回 ES 客户端（用于检索）
func (e *AuditIndexer) GetClient() *elasticsearch.Client {
	return e.client
}

// NewAuditIndexer 初始化 ES 客户端并确保索引存在
func NewAuditIndexer(addresses []string, indexName string) (*AuditIndexer, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %s", err)
	}

	indexer := &AuditIndexer{client: client, index: indexName}

	// 初始化索引 Mapping (定义字段类型)
	if err := indexer.initMapping(context.Background()); err != nil {
		return nil, err
	}

	return indexer, nil
}

func (e *AuditIndexer) initMapping(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index})
	if err != nil {
		return err
	}
	if res.StatusCode == 200 {
		return nil // 已存在，跳过
	}

	mapping := `
	{
	  "settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	  },
	  "mappings": {
		"properties": {
		  "invoice_id": { "type": "keyword" },
		  "file_name":  { "type": "keyword" },
		  "vendor_name": {
			"type": "text",
			"fields": {
			  "keyword": { "type": "keyword" }
			}
		  },
		  "po_number":    { "type": "keyword" },
		  "total_amount": { "type": "double" },
		  "currency":     { "type": "keyword" },
		  "decision":     { "type": "keyword" },
		  "status":       { "type": "keyword" },
		  "notes":        { "type": "text" },
		  "processed_at": { "type": "date" }
		}
	  }
	}`

	log.Printf(">>> [ES] Creating audit index %s ...", e.index)
	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index error: %v", err)
	}
	if res.IsError() {
		return fmt.Errorf("create index response error: %s", res.String())
	}
	return nil
}

// IndexOutcome 把一次流水线结论写进审计索引
func (e *AuditIndexer) IndexOutcome(ctx context.Context, invoiceID, fileName string, outcome *types.PipelineOutcome) error {
	doc := AuditDoc{
		InvoiceID:   invoiceID,
		FileName:    fileName,
		Decision:    outcome.FinalDecision,
		Notes:       outcome.AnalysisNotes,
		ProcessedAt: time.Now().UTC(),
	}
	if outcome.ExtractedData != nil {
		doc.VendorName = outcome.ExtractedData.VendorName
		doc.PONumber = outcome.ExtractedData.PONumber
		doc.TotalAmount = outcome.ExtractedData.TotalAmount
		doc.Currency = outcome.ExtractedData.Currency
	}
	if outcome.ValidationResult != nil {
		doc.Status = outcome.ValidationResult.Status
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: invoiceID, // 用发票 ID 做 _id，避免重复
		Body:       strings.NewReader(string(data)),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("ES index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES index response error: %s", res.String())
	}
	return nil
}

// DeleteByInvoiceID 回滚用
func (e *AuditIndexer) DeleteByInvoiceID(ctx context.Context, invoiceID string) error {
	res, err := e.client.Delete(e.index, invoiceID,
		e.client.Delete.WithContext(ctx),
		e.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("ES delete request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("ES delete response error: %s", res.String())
	}
	log.Printf(">>> [ES] 已回滚/删除 InvoiceID=%s 的审计文档", invoiceID)
	return nil
}
