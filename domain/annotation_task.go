package domain

import (
	"github.com/fundwit/go-commons/types"
)

// AnnotationTask is a labeling job published by a publisher, split into
// row-range subtasks at creation time.
type AnnotationTask struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Title       string   `json:"title"`
	PublisherID types.ID `json:"publisherId" gorm:"index:idx_task_publisher"`

	// Approved is set only by the admin override or by the status aggregator.
	Approved bool `json:"approved"`

	// MaxWorkers caps the distinct workers bound to the task, 0 is unlimited.
	MaxWorkers int `json:"maxWorkers"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *AnnotationTask) TableName() string {
	return "annotation_tasks"
}

type RowRange struct {
	Title    string `json:"title"`
	StartRow int    `json:"startRow"`
	EndRow   int    `json:"endRow"`
	Points   int    `json:"points"`
}

type TaskCreation struct {
	Title      string     `json:"title" binding:"required"`
	MaxWorkers int        `json:"maxWorkers"`
	Ranges     []RowRange `json:"ranges" binding:"required"`
}

type TaskQuery struct {
	PublisherID types.ID `form:"publisherId"`
}

type TaskDetail struct {
	AnnotationTask

	Subtasks []AnnotationSubtask `json:"subtasks"`
}
