package task

import (
	"errors"
	"sort"

	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/event"
	"annoflow/idgen"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	taskIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateTaskFunc  = CreateTask
	DetailTaskFunc  = DetailTask
	QueryTasksFunc  = QueryTasks
	ApproveTaskFunc = ApproveTask
)

// CreateTask creates a task and partitions its rows into UNCLAIMED subtasks
// in one transaction. Row ranges are fixed here and never repartitioned once
// subtasks exist.
func CreateTask(c *domain.TaskCreation, sec *session.Context) (*domain.TaskDetail, error) {
	if !sec.HasCapability(authority.PublishTasks) {
		return nil, bizerror.ErrForbidden
	}
	if err := validateRanges(c.Ranges); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	detail := domain.TaskDetail{
		AnnotationTask: domain.AnnotationTask{
			ID:          idgen.NextID(taskIdWorker),
			Title:       c.Title,
			PublisherID: sec.Identity.ID,
			MaxWorkers:  c.MaxWorkers,
			CreateTime:  now,
		},
	}

	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&detail.AnnotationTask).Error; err != nil {
			return err
		}
		for _, r := range c.Ranges {
			subtask := domain.AnnotationSubtask{
				ID:         idgen.NextID(taskIdWorker),
				TaskID:     detail.ID,
				Title:      r.Title,
				StartRow:   r.StartRow,
				EndRow:     r.EndRow,
				RowCount:   r.EndRow - r.StartRow,
				Status:     domain.SubtaskUnclaimed,
				Points:     r.Points,
				CreateTime: now,
			}
			if err := tx.Create(&subtask).Error; err != nil {
				return err
			}
			detail.Subtasks = append(detail.Subtasks, subtask)
		}

		return event.CreateEvent("TASK", detail.ID, detail.Title, event.EventCategoryCreated,
			nil, &sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func validateRanges(ranges []domain.RowRange) error {
	if len(ranges) == 0 {
		return &bizerror.ErrBadParam{Cause: errors.New("at least one row range is required")}
	}
	for _, r := range ranges {
		if r.StartRow < 0 || r.EndRow <= r.StartRow {
			return bizerror.ErrInvalidState
		}
		if r.Points < 0 {
			return &bizerror.ErrBadParam{Cause: errors.New("points must not be negative")}
		}
	}
	sorted := make([]domain.RowRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartRow < sorted[j].StartRow })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartRow < sorted[i-1].EndRow {
			return bizerror.ErrInvalidState
		}
	}
	return nil
}

func DetailTask(id types.ID, sec *session.Context) (*domain.TaskDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	detail := domain.TaskDetail{}
	if err := db.Where(&domain.AnnotationTask{ID: id}).First(&detail.AnnotationTask).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&domain.AnnotationSubtask{TaskID: id}).Order("start_row ASC").
		Find(&detail.Subtasks).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func QueryTasks(query *domain.TaskQuery, sec *session.Context) (*[]domain.AnnotationTask, error) {
	var tasks []domain.AnnotationTask
	db := persistence.ActiveDataSourceManager.GormDB()
	q := db.Model(&domain.AnnotationTask{})
	if query.PublisherID != 0 {
		q = q.Where(&domain.AnnotationTask{PublisherID: query.PublisherID})
	}
	if err := q.Order("create_time DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return &tasks, nil
}

// ApproveTask is the admin-only manual override: it flips the approved flag
// directly, independent of subtask completeness.
func ApproveTask(id types.ID, sec *session.Context) error {
	if !sec.HasCapability(authority.ApproveTasks) {
		return bizerror.ErrForbidden
	}
	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		task := domain.AnnotationTask{ID: id}
		if err := tx.Where(&task).First(&task).Error; err != nil {
			return err
		}
		if task.Approved {
			return nil
		}
		if err := tx.Model(&domain.AnnotationTask{ID: id}).Update(map[string]interface{}{"approved": true}).Error; err != nil {
			return err
		}
		return event.CreateEvent("TASK", id, task.Title, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "Approved", PropertyDesc: "Approved",
				OldValue: "false", NewValue: "true"}},
			&sec.Identity, tx)
	})
}
