package match

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokenize 小写 + NFKC 归一化 + 按空白切词
func tokenize(s string) map[string]struct{} {
	normed := norm.NFKC.String(strings.ToLower(s))
	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(normed) {
		tokens[word] = struct{}{}
	}
	return tokens
}

// LineItemsOverlap 发票条目和 PO 描述之间是否有词级交集
//
// 只要任意一个条目和 PO 描述共享一个词就算匹配（如 PO="MacBook Pro M3"
// 匹配条目 "5x MacBook Pro M3"）。刻意宽松：宁可少误拒，严格校验由上层追加。
// 条目列表为空返回 false，不允许空集 vacuous 通过。
func LineItemsOverlap(invoiceItems []string, poDescription string) bool {
	if len(invoiceItems) == 0 {
		return false
	}

	poTokens := tokenize(poDescription)
	if len(poTokens) == 0 {
		return false
	}

	for _, item := range invoiceItems {
		for token := range tokenize(item) {
			if _, ok := poTokens[token]; ok {
				return true
			}
		}
	}
	return false
}
