package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	AnnotationPending  = "PENDING"
	AnnotationApproved = "APPROVED"
	AnnotationRejected = "REJECTED"
)

// Annotation is one row-level labeling result under a subtask. Content is
// opaque to the lifecycle engine. Status is only ever set in bulk per
// subtask by the review and recheck engines.
type Annotation struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	SubtaskID types.ID `json:"subtaskId" gorm:"index:idx_annotation_subtask"`

	RowIndex int    `json:"rowIndex"`
	Content  string `json:"content" sql:"type:TEXT"`
	Status   string `json:"status"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *Annotation) TableName() string {
	return "annotations"
}

type AnnotationRowSaving struct {
	RowIndex int    `json:"rowIndex"`
	Content  string `json:"content" binding:"required"`
}
