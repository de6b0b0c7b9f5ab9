package service

import (
	"errors"

	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// mapWorkflowError translates refused transitions and stale-revision commits
// into the API error taxonomy. Everything else becomes an internal error.
func mapWorkflowError(err error) error {
	if err == nil {
		return nil
	}
	var ruleErr *workflow.RuleError
	if errors.As(err, &ruleErr) {
		var details map[string]any
		if ruleErr.Field != "" {
			details = map[string]any{"field": ruleErr.Field}
		}
		switch ruleErr.Reason {
		case workflow.ReasonInvalidDate:
			return apperrors.NewInvalidDate(ruleErr.Message, details)
		case workflow.ReasonMissingField:
			return apperrors.NewMissingField(ruleErr.Message, details)
		case workflow.ReasonIllegalState:
			return apperrors.NewIllegalState(ruleErr.Message, details)
		case workflow.ReasonNotDeletable:
			return apperrors.NewNotDeletable(ruleErr.Message, details)
		}
	}
	if errors.Is(err, repository.ErrStaleRevision) {
		return apperrors.NewConflict("ticket was modified concurrently; reload and retry", nil)
	}
	return apperrors.MapError(err)
}
