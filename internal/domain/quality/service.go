package quality

import (
	"context"
	"strings"

	"essenza/internal/core/appctx"
	"essenza/internal/core/id"
	"essenza/internal/core/types"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/lifecycle"
	"essenza/pkg/logger"
)

// CheckInput carries a new inspection's counts and classification.
type CheckInput struct {
	UnitID           id.ID
	SourceDocumentID *id.ID
	Checked          types.Quantity
	Defective        types.Quantity
	DefectTags       []string
	Severity         Severity
	Notes            string
}

// Service creates and re-evaluates quality checks. The outcome status is
// always assigned by the disposition policy; callers only supply counts.
type Service struct {
	checks  Store
	numbers document.Numerator
	policy  *Policy
	reader  ledger.Reader
}

func NewService(checks Store, numbers document.Numerator, policy *Policy, reader ledger.Reader) *Service {
	return &Service{checks: checks, numbers: numbers, policy: policy, reader: reader}
}

// Create validates the inspection, applies the disposition policy and
// persists the check already carrying its outcome. PENDING never survives
// a successful creation.
func (s *Service) Create(ctx context.Context, in CheckInput) (*Check, error) {
	c := NewCheck(in.UnitID, in.Checked, in.Defective)
	c.SourceDocumentID = in.SourceDocumentID
	c.DefectTags = in.DefectTags
	c.Severity = in.Severity
	c.Notes = in.Notes
	c.CheckedBy = appctx.GetUserID(ctx)
	c.CreatedBy = c.CheckedBy
	c.UpdatedBy = c.CheckedBy

	if err := c.Validate(ctx, s.reader).Err(); err != nil {
		return nil, err
	}

	outcome, err := s.policy.RecommendedStatus(c.CheckedQuantity, c.DefectiveQuantity)
	if err != nil {
		return nil, err
	}
	if appErr := lifecycle.CheckTransition(document.FamilyQuality, c.Status, outcome); appErr != nil {
		return nil, appErr
	}
	c.Status = outcome

	number, err := s.numbers.Next(ctx, document.KindQualityCheck.Spec().NumberPrefix)
	if err != nil {
		return nil, err
	}
	c.Number = number

	if err := s.checks.Save(ctx, c); err != nil {
		return nil, err
	}

	logger.Info(ctx, "quality check created",
		"check_id", c.ID.String(),
		"number", c.Number,
		"outcome", string(c.Status),
		"defect_rate", c.DefectRate().String())
	return c, nil
}

// Rework re-evaluates a failed or rework-flagged check with fresh counts.
// PASSED is terminal, so the machine rejects reworking a passed check.
func (s *Service) Rework(ctx context.Context, decision ReworkDecision) (*Check, error) {
	if appErr := decision.Validate(); appErr != nil {
		return nil, appErr
	}

	c, err := s.checks.Get(ctx, decision.CheckID)
	if err != nil {
		return nil, err
	}

	target, err := s.policy.RecommendedStatus(decision.CheckedQuantity, decision.DefectiveQuantity)
	if err != nil {
		return nil, err
	}
	if appErr := lifecycle.CheckTransition(document.FamilyQuality, c.Status, target); appErr != nil {
		return nil, appErr
	}

	from := c.Status
	c.CheckedQuantity = decision.CheckedQuantity
	c.DefectiveQuantity = decision.DefectiveQuantity
	if len(c.Lines) > 0 {
		c.Lines[0].Quantity = decision.CheckedQuantity
	}
	c.DefectTags = decision.DefectTags
	c.Status = target
	c.UpdatedBy = appctx.GetUserID(ctx)
	c.Notes = appendNotes(c.Notes, decision.Notes)
	c.Touch()

	if err := s.checks.Save(ctx, c); err != nil {
		return nil, err
	}

	logger.Info(ctx, "quality check reworked",
		"check_id", c.ID.String(),
		"from", string(from),
		"to", string(target))
	return c, nil
}

func (s *Service) Get(ctx context.Context, checkID id.ID) (*Check, error) {
	return s.checks.Get(ctx, checkID)
}

func (s *Service) List(ctx context.Context) ([]Check, error) {
	return s.checks.List(ctx)
}

func appendNotes(existing, added string) string {
	if existing == "" {
		return added
	}
	return strings.TrimSpace(existing + "\n" + added)
}
