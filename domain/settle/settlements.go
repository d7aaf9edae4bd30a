package settle

import (
	"github.com/fundwit/go-commons/types"
)

// SettlementRecord is the idempotency anchor for point payout: the unique
// index on SubtaskID guarantees at most one settlement per subtask even when
// aggregation runs concurrently from two triggers.
type SettlementRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	SubtaskID types.ID `json:"subtaskId" gorm:"unique_index:settlement_subtask_unique"`
	TaskID    types.ID `json:"taskId" gorm:"index:idx_settlement_task"`
	WorkerID  types.ID `json:"workerId"`
	Points    int      `json:"points"`

	SettleTime types.Timestamp `json:"settleTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *SettlementRecord) TableName() string {
	return "settlements"
}

type AggregateResult struct {
	SubtaskCount  int  `json:"subtaskCount"`
	ApprovedCount int  `json:"approvedCount"`
	Terminal      bool `json:"terminal"`
	TaskApproved  bool `json:"taskApproved"`
	SettledCount  int  `json:"settledCount"`
	SettledPoints int  `json:"settledPoints"`
}
