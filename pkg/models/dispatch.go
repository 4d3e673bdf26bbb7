package models

// Outcome classifies what happened to one matched user within a cycle.
type Outcome string

const (
	// OutcomeSent means exactly one batched push was issued for the user.
	OutcomeSent Outcome = "sent"
	// OutcomeNotEligible means setup was incomplete or no device was registered;
	// no task query was performed.
	OutcomeNotEligible Outcome = "not_eligible"
	// OutcomeNoTasks means the user had nothing outstanding; a normal skip.
	OutcomeNoTasks Outcome = "no_tasks"
	// OutcomeFailed means the user's unit hit an error (store read, send,
	// or reconciliation write). Other users are unaffected.
	OutcomeFailed Outcome = "failed"
)

// UserResult records the outcome of one user's processing unit.
type UserResult struct {
	UserID         string   `json:"user_id"`
	Outcome        Outcome  `json:"outcome"`
	Subjects       []string `json:"subjects,omitempty"`
	TokensNotified int      `json:"tokens_notified,omitempty"`
	TokensRemoved  int      `json:"tokens_removed,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// CycleReport summarizes one full dispatch cycle.
type CycleReport struct {
	Time    string       `json:"time"` // Reference "HH:MM" the cycle matched on
	Matched int          `json:"matched"`
	Results []UserResult `json:"results"`
}

// Count returns how many results carry the given outcome.
func (r *CycleReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
