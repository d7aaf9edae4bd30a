package subtask

import (
	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/event"
	"annoflow/persistence"
	"annoflow/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	SubmitTaskFunc = SubmitTask
)

// SubmitTask hands all of the caller's owned subtasks of a task over to
// review in one batch: every CLAIMED or IN_PROGRESS subtask becomes
// PENDING_REVIEW with a completion stamp. Partial submission is not
// supported. Subtasks already past submission are left untouched, so a
// repeated submit is a no-op with the same count.
func SubmitTask(taskId types.ID, sec *session.Context) (*domain.SubmitResult, error) {
	if !sec.HasCapability(authority.SubmitSubtasks) {
		return nil, bizerror.ErrForbidden
	}

	result := domain.SubmitResult{}
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		task := domain.AnnotationTask{ID: taskId}
		if err := tx.Where(&task).First(&task).Error; err != nil {
			return err
		}

		var owned []domain.AnnotationSubtask
		if err := tx.Where(&domain.AnnotationSubtask{TaskID: taskId, WorkerID: sec.Identity.ID}).
			Find(&owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return bizerror.ErrNothingClaimed
		}
		result.SubtaskCount = len(owned)

		db := tx.Model(&domain.AnnotationSubtask{}).
			Where("task_id = ? AND worker_id = ? AND status IN (?)", taskId, sec.Identity.ID,
				[]string{domain.SubtaskClaimed, domain.SubtaskInProgress}).
			Update(map[string]interface{}{
				"status":        domain.SubtaskPendingReview,
				"complete_time": types.CurrentTimestamp(),
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected == 0 {
			// all owned subtasks were submitted before, nothing to stamp
			return nil
		}

		return event.CreateEvent("TASK", taskId, task.Title, event.EventCategorySubmitted,
			[]event.UpdatedProperty{{PropertyName: "Status", PropertyDesc: "Status",
				OldValue: domain.SubtaskInProgress, NewValue: domain.SubtaskPendingReview,
				NewValueDesc: strconv.FormatInt(db.RowsAffected, 10) + " subtasks submitted"}},
			&sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
