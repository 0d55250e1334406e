package match_test

import (
	"testing"

	"ap-agent/logic/match"
)

var roster = []string{"TechSupplies Ltd", "Office Coffee Co"}

func TestBestVendorMatch_IdenticalScores100(t *testing.T) {
	got := match.BestVendorMatch("TechSupplies Ltd", roster)
	if got.Name != "TechSupplies Ltd" {
		t.Errorf("Name = %q, want %q", got.Name, "TechSupplies Ltd")
	}
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
}

func TestBestVendorMatch_Approximate(t *testing.T) {
	tests := []struct {
		name     string
		scanned  string
		wantName string
		minScore int
	}{
		{
			name:     "typo",
			scanned:  "TechSuplies Ltd",
			wantName: "TechSupplies Ltd",
			minScore: 85,
		},
		{
			name:     "case and whitespace",
			scanned:  "  techsupplies ltd ",
			wantName: "TechSupplies Ltd",
			minScore: 85,
		},
		{
			name:     "word order",
			scanned:  "Ltd TechSupplies",
			wantName: "TechSupplies Ltd",
			minScore: 85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := match.BestVendorMatch(tt.scanned, roster)
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Score < tt.minScore {
				t.Errorf("Score = %d, want >= %d", got.Score, tt.minScore)
			}
		})
	}
}

func TestBestVendorMatch_UnrelatedScoresLow(t *testing.T) {
	got := match.BestVendorMatch("zzzz qqqq xxxx", roster)
	if got.Score >= 85 {
		t.Errorf("Score = %d, want < 85 for unrelated input", got.Score)
	}
	// 即使被拒也必须返回恰好一个候选
	if got.Name == "" {
		t.Error("Name is empty, want the best candidate even for a low score")
	}
}

func TestBestVendorMatch_EmptyRoster(t *testing.T) {
	got := match.BestVendorMatch("TechSupplies Ltd", nil)
	if got.Name != "" || got.Score != 0 {
		t.Errorf("got %+v, want zero value for empty roster", got)
	}
}

func TestBestVendorMatch_Deterministic(t *testing.T) {
	first := match.BestVendorMatch("Tech Supplies", roster)
	for i := 0; i < 10; i++ {
		again := match.BestVendorMatch("Tech Supplies", roster)
		if again != first {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}
