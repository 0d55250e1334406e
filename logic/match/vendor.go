package match

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// VendorMatch 模糊匹配结果，Score 区间 [0,100]
type VendorMatch struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// BestVendorMatch 在供应商名录里找最接近的名字（容忍拼写错误、大小写、词序）
// 空名录返回零值（Score=0），不报错。
// 同分时取名录里靠前的那个，名录顺序由存储层固定，所以结果可复现。
func BestVendorMatch(scannedName string, vendorNames []string) VendorMatch {
	if len(vendorNames) == 0 {
		return VendorMatch{}
	}

	best := VendorMatch{
		Name:  vendorNames[0],
		Score: fuzzy.TokenSortRatio(scannedName, vendorNames[0]),
	}
	for _, name := range vendorNames[1:] {
		if score := fuzzy.TokenSortRatio(scannedName, name); score > best.Score {
			best = VendorMatch{Name: name, Score: score}
		}
	}
	return best
}
