package domain

import (
	"annoflow/domain/state"

	"github.com/fundwit/go-commons/types"
)

const (
	SubtaskUnclaimed     = "UNCLAIMED"
	SubtaskClaimed       = "CLAIMED"
	SubtaskInProgress    = "IN_PROGRESS"
	SubtaskPendingReview = "PENDING_REVIEW"
	SubtaskApproved      = "APPROVED"
	SubtaskRejected      = "REJECTED"
)

var (
	StateUnclaimed     = state.State{Name: SubtaskUnclaimed, Category: state.Open}
	StateClaimed       = state.State{Name: SubtaskClaimed, Category: state.InProcess}
	StateInProgress    = state.State{Name: SubtaskInProgress, Category: state.InProcess}
	StatePendingReview = state.State{Name: SubtaskPendingReview, Category: state.InReview}
	StateApproved      = state.State{Name: SubtaskApproved, Category: state.Done}
	StateRejected      = state.State{Name: SubtaskRejected, Category: state.Rejected}

	// SubtaskStateMachine is the only authority on legal subtask moves.
	// The reopen transition is exercised only when the recheck reopen
	// policy is enabled.
	SubtaskStateMachine = state.NewStateMachine(
		[]state.State{StateUnclaimed, StateClaimed, StateInProgress, StatePendingReview, StateApproved, StateRejected},
		[]state.Transition{
			{Name: "claim", From: StateUnclaimed, To: StateClaimed},
			{Name: "start", From: StateClaimed, To: StateInProgress},
			{Name: "submit", From: StateClaimed, To: StatePendingReview},
			{Name: "submit", From: StateInProgress, To: StatePendingReview},
			{Name: "approve", From: StatePendingReview, To: StateApproved},
			{Name: "reject", From: StatePendingReview, To: StateRejected},
			{Name: "reopen", From: StateRejected, To: StateUnclaimed},
		})
)

// AnnotationSubtask is a contiguous row-range work unit, claimable by one
// worker at a time. WorkerID is zero exactly while the subtask is UNCLAIMED.
type AnnotationSubtask struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	TaskID types.ID `json:"taskId" gorm:"index:idx_subtask_task"`
	Title  string   `json:"title"`

	WorkerID types.ID `json:"workerId" gorm:"index:idx_subtask_worker"`

	// row range is immutable after creation, RowCount = EndRow - StartRow
	StartRow int `json:"startRow"`
	EndRow   int `json:"endRow"`
	RowCount int `json:"rowCount"`

	Status string `json:"status"`
	Points int    `json:"points"`

	CreateTime   types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	CompleteTime types.Timestamp `json:"completeTime" sql:"type:DATETIME(6)"`
}

func (t *AnnotationSubtask) TableName() string {
	return "annotation_subtasks"
}

// Terminal reports whether the subtask outcome is settled from the worker's
// perspective.
func (t *AnnotationSubtask) Terminal() bool {
	return t.Status == SubtaskApproved || t.Status == SubtaskRejected
}

type SubmitResult struct {
	SubtaskCount int `json:"subtaskCount"`
}
