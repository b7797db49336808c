package quality

import (
	"testing"

	"github.com/shopspring/decimal"

	"essenza/internal/core/types"
	"essenza/internal/domain/document"
)

func TestRecommendedStatus_ThresholdBoundary(t *testing.T) {
	p := NewPolicy()

	tests := []struct {
		name      string
		checked   int64
		defective int64
		want      document.Status
	}{
		{"no defects", 100, 0, document.StatusPassed},
		{"exactly at threshold is rework", 100, 10, document.StatusRequiresRework},
		{"just above threshold fails", 100, 11, document.StatusFailed},
		{"everything defective fails", 50, 50, document.StatusFailed},
		{"nothing checked passes", 0, 0, document.StatusPassed},
		{"small lot under threshold", 20, 1, document.StatusRequiresRework},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.RecommendedStatus(types.Quantity(tt.checked), types.Quantity(tt.defective))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RecommendedStatus(%d, %d) = %s, want %s", tt.checked, tt.defective, got, tt.want)
			}
		})
	}
}

func TestRecommendedStatus_CustomThreshold(t *testing.T) {
	// zero tolerance: any defect above 0% fails
	p := NewPolicyWithThreshold(decimal.Zero)

	got, err := p.RecommendedStatus(100, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != document.StatusFailed {
		t.Errorf("got %s, want FAILED", got)
	}
}

func TestRecommendedStatus_Expression(t *testing.T) {
	p := NewPolicy()
	err := p.WithExpression(`defective == 0 ? "PASSED" : (rate > threshold * 2.0 ? "FAILED" : "REQUIRES_REWORK")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	// 15% is above the default threshold but below the doubled one
	got, err := p.RecommendedStatus(100, 15)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got != document.StatusRequiresRework {
		t.Errorf("got %s, want REQUIRES_REWORK", got)
	}

	got, err = p.RecommendedStatus(100, 25)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got != document.StatusFailed {
		t.Errorf("got %s, want FAILED", got)
	}
}

func TestWithExpression_Rejections(t *testing.T) {
	p := NewPolicy()
	if err := p.WithExpression(`rate >`); err == nil {
		t.Error("expected compile error for malformed expression")
	}
	if err := p.WithExpression(`rate > threshold`); err == nil {
		t.Error("expected rejection of non-string result type")
	}
}

func TestRecommendedStatus_ExpressionUnknownStatus(t *testing.T) {
	p := NewPolicy()
	if err := p.WithExpression(`"MAYBE"`); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := p.RecommendedStatus(10, 1); err == nil {
		t.Error("expected error for unknown status value")
	}
}
