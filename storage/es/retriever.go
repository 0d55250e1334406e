package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ap-agent/types"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SearchAudit 审计检索：decision/vendor/日期过滤 + notes 上的 BM25
func SearchAudit(ctx context.Context, client *elasticsearch.Client, index string, req *types.AuditSearchRequest) ([]types.AuditHit, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	esQuery := buildAuditQuery(req, topK)

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("error encoding query: %s", err)
	}
	log.Printf(">>> [ES] Audit query: %s", buf.String())

	searchReq := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(buf.String()),
	}
	res, err := searchReq.Do(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("error getting response: %s", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error response: %s", res.String())
	}

	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing response body: %s", err)
	}

	hitsWrapper, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid response format")
	}
	hitsList, ok := hitsWrapper["hits"].([]interface{})
	if !ok {
		return []types.AuditHit{}, nil // 无结果
	}

	hits := make([]types.AuditHit, 0, len(hitsList))
	for _, h := range hitsList {
		hitMap, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}

		hit := types.AuditHit{
			InvoiceID:   toString(source["invoice_id"]),
			FileName:    toString(source["file_name"]),
			VendorName:  toString(source["vendor_name"]),
			PONumber:    toString(source["po_number"]),
			Decision:    toString(source["decision"]),
			ProcessedAt: toString(source["processed_at"]),
		}
		if amount, ok := source["total_amount"].(float64); ok {
			hit.TotalAmount = amount
		}
		if score, ok := hitMap["_score"].(float64); ok {
			hit.Score = score
		}
		if rawNotes, ok := source["notes"].([]interface{}); ok {
			for _, n := range rawNotes {
				hit.Notes = append(hit.Notes, toString(n))
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildAuditQuery 构建 bool 查询
func buildAuditQuery(req *types.AuditSearchRequest, topK int) map[string]interface{} {
	var must []interface{}
	var filter []interface{}

	if req.Query != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"notes": req.Query,
			},
		})
	}
	if req.VendorName != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"vendor_name": req.VendorName,
			},
		})
	}
	if req.Decision != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{
				"decision": req.Decision,
			},
		})
	}
	if req.DateStart != "" || req.DateEnd != "" {
		rangeQuery := map[string]interface{}{}
		if req.DateStart != "" {
			rangeQuery["gte"] = req.DateStart
		}
		if req.DateEnd != "" {
			rangeQuery["lte"] = req.DateEnd
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{
				"processed_at": rangeQuery,
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"size": topK,
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"processed_at": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
