package service

import (
	"context"
	"fmt"
	"time"

	"ap-agent/storage/es"
	"ap-agent/storage/postgres"
	"ap-agent/types"
	"ap-agent/vars"

	"github.com/elastic/go-elasticsearch/v8"
)

// AuditService 审计查询：ES 全文/过滤检索 + PG 最近记录
type AuditService struct {
	repo     *postgres.APRepo
	esClient *elasticsearch.Client
}

func NewAuditService(repo *postgres.APRepo, esClient *elasticsearch.Client) *AuditService {
	return &AuditService{repo: repo, esClient: esClient}
}

// Search 按决策/供应商/日期/关键词检索历史处理结论
func (s *AuditService) Search(ctx context.Context, req *types.AuditSearchRequest) ([]types.AuditHit, error) {
	searchStart := time.Now()
	hits, err := es.SearchAudit(ctx, s.esClient, vars.AuditIndex, req)
	if err != nil {
		return nil, fmt.Errorf("ES 查询失败: %w", err)
	}
	fmt.Printf(">>> [ES Audit Search] 命中 %d 条, 耗时: %v\n", len(hits), time.Since(searchStart))
	return hits, nil
}

// RecentInvoices 最近的处理记录（PG 侧，给列表页用）
func (s *AuditService) RecentInvoices(ctx context.Context, decision string, limit int) ([]postgres.Invoice, error) {
	return s.repo.ListInvoices(ctx, decision, limit)
}
