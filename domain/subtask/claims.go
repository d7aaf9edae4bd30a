package subtask

import (
	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/event"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ClaimSubtaskFunc = ClaimSubtask
)

// ClaimSubtask reserves an UNCLAIMED subtask for the calling worker. The
// status-qualified update serializes concurrent claims: at most one caller
// observes RowsAffected == 1, every other one gets ErrAlreadyClaimed and may
// retry with another subtask.
func ClaimSubtask(subtaskId types.ID, sec *session.Context) (*domain.AnnotationSubtask, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if sec.Banned || !sec.HasCapability(authority.ClaimSubtasks) {
		return nil, bizerror.ErrForbidden
	}

	var claimed domain.AnnotationSubtask
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		subtask := domain.AnnotationSubtask{ID: subtaskId}
		if err := tx.Where(&subtask).First(&subtask).Error; err != nil {
			return err
		}
		if subtask.Status != domain.SubtaskUnclaimed {
			return bizerror.ErrAlreadyClaimed
		}

		task := domain.AnnotationTask{ID: subtask.TaskID}
		if err := tx.Where(&task).First(&task).Error; err != nil {
			return err
		}
		if task.MaxWorkers > 0 {
			// distinct workers already bound to the task, the caller excluded:
			// a worker holding a subtask keeps its slot for further claims
			var otherWorkers int
			row := tx.Model(&domain.AnnotationSubtask{}).
				Where("task_id = ? AND worker_id != 0 AND worker_id != ?", task.ID, sec.Identity.ID).
				Select("COUNT(DISTINCT worker_id)").Row()
			if err := row.Scan(&otherWorkers); err != nil {
				return err
			}
			if otherWorkers >= task.MaxWorkers {
				return bizerror.ErrWorkerLimitReached
			}
		}

		db := tx.Model(&domain.AnnotationSubtask{}).
			Where("id = ? AND status = ?", subtaskId, domain.SubtaskUnclaimed).
			Update(map[string]interface{}{"worker_id": sec.Identity.ID, "status": domain.SubtaskClaimed})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrAlreadyClaimed
		}

		if err := event.CreateEvent("SUBTASK", subtaskId, subtask.Title, event.EventCategoryClaimed,
			[]event.UpdatedProperty{{PropertyName: "Status", PropertyDesc: "Status",
				OldValue: domain.SubtaskUnclaimed, NewValue: domain.SubtaskClaimed}},
			&sec.Identity, tx); err != nil {
			return err
		}

		return tx.Where(&domain.AnnotationSubtask{ID: subtaskId}).First(&claimed).Error
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}
