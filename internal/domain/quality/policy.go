package quality

import (
	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"

	"essenza/internal/core/apperror"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
)

// DefaultDefectThreshold is the defect rate above which a check fails.
// Exactly at the threshold the check still qualifies for rework.
var DefaultDefectThreshold = decimal.NewFromFloat(0.10)

// Policy assigns the outcome status of a quality check from its counts.
// The built-in rule is: no defects passes, a rate above the threshold
// fails, everything in between requires rework. Deployments can override
// the rule with a CEL expression evaluated over checked, defective, rate
// and threshold, returning one of the outcome status strings.
type Policy struct {
	threshold decimal.Decimal
	program   cel.Program
}

// NewPolicy returns the built-in policy with the default threshold.
func NewPolicy() *Policy {
	return &Policy{threshold: DefaultDefectThreshold}
}

// NewPolicyWithThreshold overrides the failure threshold.
func NewPolicyWithThreshold(threshold decimal.Decimal) *Policy {
	return &Policy{threshold: threshold}
}

// Threshold returns the configured failure threshold.
func (p *Policy) Threshold() decimal.Decimal {
	return p.threshold
}

// WithExpression compiles a CEL expression that replaces the built-in rule.
// The expression sees checked and defective as ints, rate and threshold as
// doubles, and must evaluate to "PASSED", "FAILED" or "REQUIRES_REWORK".
func (p *Policy) WithExpression(expr string) error {
	env, err := cel.NewEnv(
		cel.Variable("checked", cel.IntType),
		cel.Variable("defective", cel.IntType),
		cel.Variable("rate", cel.DoubleType),
		cel.Variable("threshold", cel.DoubleType),
	)
	if err != nil {
		return apperror.NewInternal(err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return apperror.NewValidation("invalid disposition expression").
			WithCause(issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.StringType) {
		return apperror.NewValidation("disposition expression must return a status string")
	}
	prg, err := env.Program(ast)
	if err != nil {
		return apperror.NewInternal(err)
	}
	p.program = prg
	return nil
}

// RecommendedStatus computes the outcome for the given counts.
func (p *Policy) RecommendedStatus(checked, defective types.Quantity) (document.Status, error) {
	rate := DefectRate(checked, defective)

	if p.program != nil {
		out, _, err := p.program.Eval(map[string]any{
			"checked":   checked.Int64(),
			"defective": defective.Int64(),
			"rate":      rate.InexactFloat64(),
			"threshold": p.threshold.InexactFloat64(),
		})
		if err != nil {
			return "", apperror.NewInternal(err)
		}
		s, ok := out.Value().(string)
		if !ok {
			return "", apperror.NewValidation("disposition expression returned non-string value")
		}
		status := document.Status(s)
		switch status {
		case document.StatusPassed, document.StatusFailed, document.StatusRequiresRework:
			return status, nil
		}
		return "", apperror.NewValidation("disposition expression returned unknown status").
			WithDetail("status", string(status))
	}

	switch {
	case defective.IsZero():
		return document.StatusPassed, nil
	case rate.GreaterThan(p.threshold):
		return document.StatusFailed, nil
	default:
		return document.StatusRequiresRework, nil
	}
}
