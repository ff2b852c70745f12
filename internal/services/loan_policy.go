package services

import "shelfwise/internal/models"

// ─── Loan Policy Constants ────────────────────────────────────────────────────

const (
	// IndividualLoanDays is the loan period for an individual issue.
	IndividualLoanDays = 30

	// GroupLoanDays is the extended loan period for a group issue.
	GroupLoanDays = 180

	// MinGroupSize and MaxGroupSize bound the declared size of a group issue.
	MinGroupSize = 3
	MaxGroupSize = 6
)

// PlanIssue validates the issue type and group size and returns the loan
// duration in days. groupSize = 0 means "not provided".
//
// Rules:
//   - individual : groupSize may be omitted or 1; anything larger is rejected.
//     Duration is IndividualLoanDays.
//   - group      : groupSize must be within [MinGroupSize, MaxGroupSize].
//     Duration is GroupLoanDays.
//
// Pure and deterministic; the circulation workflow calls it before touching
// inventory so a policy rejection never needs a compensating release.
func PlanIssue(issueType models.IssueType, groupSize int) (int, error) {
	switch issueType {
	case models.IssueTypeIndividual:
		if groupSize > 1 {
			return 0, ErrInvalidGroupSize
		}
		return IndividualLoanDays, nil
	case models.IssueTypeGroup:
		if groupSize < MinGroupSize || groupSize > MaxGroupSize {
			return 0, ErrInvalidGroupSize
		}
		return GroupLoanDays, nil
	default:
		return 0, ErrInvalidIssueType
	}
}
