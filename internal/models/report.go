package models

import "time"

// ReconcileMode identifies how a batch is applied to the catalog.
type ReconcileMode string

const (
	ModeDeleteByCode ReconcileMode = "delete_by_code"
	ModeUpsert       ReconcileMode = "upsert"
	ModeRecount      ReconcileMode = "recount"
)

// RowAction is what happened to a single row or product.
type RowAction string

const (
	ActionCreated     RowAction = "created"
	ActionUpdated     RowAction = "updated"
	ActionDeleted     RowAction = "deleted"
	ActionActivated   RowAction = "activated"
	ActionDeactivated RowAction = "deactivated"
	ActionNotFound    RowAction = "not_found"
	ActionSkipped     RowAction = "skipped"
	ActionFailed      RowAction = "failed"
)

// RowOutcome is the result of one unit of work in a batch. Err is set only
// when Action is ActionFailed.
type RowOutcome struct {
	Line   int       `json:"line,omitempty"`
	Code   string    `json:"code"`
	Action RowAction `json:"action"`
	Err    error     `json:"-"`
}

// RowFailure names a row that was rejected.
type RowFailure struct {
	Line   int    `json:"line,omitempty"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// ReconciliationReport summarizes a reconciliation run.
type ReconciliationReport struct {
	RunID         string        `json:"run_id"`
	Mode          ReconcileMode `json:"mode"`
	Source        string        `json:"source"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Added         int           `json:"added_count"`
	Updated       int           `json:"updated_count"`
	Deleted       int           `json:"deleted_count"`
	Activated     int           `json:"activated_count"`
	Deactivated   int           `json:"deactivated_count"`
	Skipped       int           `json:"skipped_count"`
	NotFoundCodes []string      `json:"not_found_codes"`
	Failures      []RowFailure  `json:"failures"`
	Outcomes      []RowOutcome  `json:"outcomes"`
}

// Record appends o and folds it into the counters.
func (r *ReconciliationReport) Record(o RowOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Action {
	case ActionCreated:
		r.Added++
	case ActionUpdated:
		r.Updated++
	case ActionDeleted:
		r.Deleted++
	case ActionActivated:
		r.Activated++
	case ActionDeactivated:
		r.Deactivated++
	case ActionSkipped:
		r.Skipped++
	case ActionNotFound:
		r.NotFoundCodes = append(r.NotFoundCodes, o.Code)
	case ActionFailed:
		reason := ""
		if o.Err != nil {
			reason = o.Err.Error()
		}
		r.Failures = append(r.Failures, RowFailure{Line: o.Line, Code: o.Code, Reason: reason})
	}
}

// FailedCodes lists the codes of rejected rows in the order they failed.
func (r *ReconciliationReport) FailedCodes() []string {
	codes := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		codes = append(codes, f.Code)
	}
	return codes
}
