package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfwise/internal/models"
)

func TestPlanIssue(t *testing.T) {
	tests := []struct {
		name      string
		issueType models.IssueType
		groupSize int
		wantDays  int
		wantErr   error
	}{
		{name: "individual without group size", issueType: models.IssueTypeIndividual, wantDays: 30},
		{name: "individual with group size 1", issueType: models.IssueTypeIndividual, groupSize: 1, wantDays: 30},
		{name: "individual with group size 2", issueType: models.IssueTypeIndividual, groupSize: 2, wantErr: ErrInvalidGroupSize},
		{name: "group of 4", issueType: models.IssueTypeGroup, groupSize: 4, wantDays: 180},
		{name: "group at lower bound", issueType: models.IssueTypeGroup, groupSize: 3, wantDays: 180},
		{name: "group at upper bound", issueType: models.IssueTypeGroup, groupSize: 6, wantDays: 180},
		{name: "group of 2 too small", issueType: models.IssueTypeGroup, groupSize: 2, wantErr: ErrInvalidGroupSize},
		{name: "group of 7 too large", issueType: models.IssueTypeGroup, groupSize: 7, wantErr: ErrInvalidGroupSize},
		{name: "group without group size", issueType: models.IssueTypeGroup, wantErr: ErrInvalidGroupSize},
		{name: "unknown issue type", issueType: "corporate", groupSize: 4, wantErr: ErrInvalidIssueType},
		{name: "empty issue type", issueType: "", wantErr: ErrInvalidIssueType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := PlanIssue(tt.issueType, tt.groupSize)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, days)
		})
	}
}
