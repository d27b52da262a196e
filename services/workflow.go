package services

// WorkflowStatus is a manuscript's stage in the editorial pipeline.
type WorkflowStatus string

const (
	StatusDraft                     WorkflowStatus = "draft"
	StatusSubmitted                 WorkflowStatus = "submitted"
	StatusEditorialAssistantReview  WorkflowStatus = "editorial_assistant_review"
	StatusAssociateEditorAssignment WorkflowStatus = "associate_editor_assignment"
	StatusAssociateEditorReview     WorkflowStatus = "associate_editor_review"
	StatusReviewerAssignment        WorkflowStatus = "reviewer_assignment"
	StatusUnderReview               WorkflowStatus = "under_review"
	StatusRevisionRequested         WorkflowStatus = "revision_requested"
	StatusRevisionSubmitted         WorkflowStatus = "revision_submitted"
	StatusAccepted                  WorkflowStatus = "accepted"
	StatusRejected                  WorkflowStatus = "rejected"
	StatusPublished                 WorkflowStatus = "published"
	StatusWithdrawn                 WorkflowStatus = "withdrawn"
)

// workflowTransitions is the single source of truth for legal status moves.
// Terminal states (published, withdrawn) have no outgoing transitions.
var workflowTransitions = map[WorkflowStatus][]WorkflowStatus{
	StatusDraft:                     {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:                 {StatusEditorialAssistantReview, StatusWithdrawn},
	StatusEditorialAssistantReview:  {StatusAssociateEditorAssignment, StatusRevisionRequested, StatusWithdrawn},
	StatusAssociateEditorAssignment: {StatusAssociateEditorReview, StatusRevisionRequested},
	StatusAssociateEditorReview:     {StatusReviewerAssignment, StatusRevisionRequested, StatusRejected},
	StatusReviewerAssignment:        {StatusUnderReview, StatusRevisionRequested},
	StatusUnderReview:               {StatusRevisionRequested, StatusAccepted, StatusRejected},
	StatusRevisionRequested:         {StatusRevisionSubmitted, StatusWithdrawn},
	StatusRevisionSubmitted:         {StatusEditorialAssistantReview, StatusAssociateEditorReview, StatusAccepted, StatusRejected},
	StatusAccepted:                  {StatusPublished},
	StatusRejected:                  {StatusWithdrawn},
	StatusPublished:                 {},
	StatusWithdrawn:                 {},
}

// IsValidStatus reports whether s is a known workflow status.
func IsValidStatus(s WorkflowStatus) bool {
	_, ok := workflowTransitions[s]
	return ok
}

// IsTerminalStatus reports whether s has no outgoing transitions.
func IsTerminalStatus(s WorkflowStatus) bool {
	allowed, ok := workflowTransitions[s]
	return ok && len(allowed) == 0
}

// AllowedTransitions returns a copy of the legal targets from the given
// status. Unknown statuses yield an empty set.
func AllowedTransitions(from WorkflowStatus) []WorkflowStatus {
	allowed := workflowTransitions[from]
	out := make([]WorkflowStatus, len(allowed))
	copy(out, allowed)
	return out
}

// ValidateTransition checks whether current -> target is a legal move.
// Every status mutation in the system must pass this check first; callers
// never apply a transition when it returns an error.
func ValidateTransition(current, target WorkflowStatus) error {
	allowed, ok := workflowTransitions[current]
	if !ok {
		return &InvalidTransitionError{From: current, To: target, Allowed: nil}
	}
	if !IsValidStatus(target) {
		return &InvalidTransitionError{From: current, To: target, Allowed: AllowedTransitions(current)}
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return &InvalidTransitionError{From: current, To: target, Allowed: AllowedTransitions(current)}
}
