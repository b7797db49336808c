// Package lifecycle enforces document status transitions and executes the
// stock side effects that guard them.
package lifecycle

import (
	"essenza/internal/core/apperror"
	"essenza/internal/domain/document"
)

// Transition tables per document family. A status missing from its family
// table is terminal. Batch operations have no machine at all: their
// semantics are per-line outcomes, not document states.
var tradeTransitions = map[document.Status][]document.Status{
	document.StatusDraft:     {document.StatusSubmitted},
	document.StatusSubmitted: {document.StatusApproved, document.StatusRejected},
	document.StatusApproved:  {document.StatusCompleted},
}

var qualityOutcomes = []document.Status{
	document.StatusPassed,
	document.StatusFailed,
	document.StatusRequiresRework,
}

var qualityTransitions = map[document.Status][]document.Status{
	document.StatusPending:        qualityOutcomes,
	document.StatusFailed:         qualityOutcomes,
	document.StatusRequiresRework: qualityOutcomes,
}

func transitionsFor(family document.Family) map[document.Status][]document.Status {
	switch family {
	case document.FamilyTrade:
		return tradeTransitions
	case document.FamilyQuality:
		return qualityTransitions
	}
	return nil
}

// CanTransition reports whether the family's machine allows from → to.
func CanTransition(family document.Family, from, to document.Status) bool {
	for _, next := range transitionsFor(family)[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one. Empty
// for terminal states.
func NextStatuses(family document.Family, from document.Status) []document.Status {
	return transitionsFor(family)[from]
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(family document.Family, status document.Status) bool {
	return len(transitionsFor(family)[status]) == 0
}

// CheckTransition returns an ILLEGAL_TRANSITION error when the move is not
// in the family's table.
func CheckTransition(family document.Family, from, to document.Status) *apperror.AppError {
	if !CanTransition(family, from, to) {
		return apperror.NewIllegalTransition(string(from), string(to))
	}
	return nil
}
