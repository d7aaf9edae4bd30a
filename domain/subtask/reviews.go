package subtask

import (
	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/domain/settle"
	"annoflow/event"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ApproveReviewFunc = ApproveReview
	RejectReviewFunc  = RejectReview
)

func ApproveReview(subtaskId types.ID, sec *session.Context) error {
	return reviewSubtask(subtaskId, domain.SubtaskApproved, domain.AnnotationApproved, sec)
}

func RejectReview(subtaskId types.ID, sec *session.Context) error {
	return reviewSubtask(subtaskId, domain.SubtaskRejected, domain.AnnotationRejected, sec)
}

// reviewSubtask applies a human review decision: every annotation of the
// subtask and the subtask itself move to the target status in one
// transaction. Partial annotation approval is not a feature of this engine.
// Task approval and payout stay with the status aggregator.
func reviewSubtask(subtaskId types.ID, targetStatus string, annotationStatus string, sec *session.Context) error {
	if !sec.HasCapability(authority.ReviewSubtasks) {
		return bizerror.ErrForbidden
	}

	var taskId types.ID
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		subtask := domain.AnnotationSubtask{ID: subtaskId}
		if err := tx.Where(&subtask).First(&subtask).Error; err != nil {
			return err
		}
		task := domain.AnnotationTask{ID: subtask.TaskID}
		if err := tx.Where(&task).First(&task).Error; err != nil {
			return err
		}
		if task.PublisherID != sec.Identity.ID && !sec.HasCapability(authority.ManageAnyTask) {
			return bizerror.ErrForbidden
		}
		if !domain.SubtaskStateMachine.CanTransit(subtask.Status, targetStatus) {
			return bizerror.ErrInvalidState
		}

		if err := tx.Model(&domain.Annotation{}).Where("subtask_id = ?", subtaskId).
			Update(map[string]interface{}{"status": annotationStatus}).Error; err != nil {
			return err
		}

		db := tx.Model(&domain.AnnotationSubtask{}).
			Where("id = ? AND status = ?", subtaskId, subtask.Status).
			Update(map[string]interface{}{"status": targetStatus})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			// lost against a concurrent review or recheck of the same subtask
			return bizerror.ErrConcurrentModification
		}

		taskId = subtask.TaskID
		return event.CreateEvent("SUBTASK", subtaskId, subtask.Title, event.EventCategoryReviewed,
			[]event.UpdatedProperty{{PropertyName: "Status", PropertyDesc: "Status",
				OldValue: subtask.Status, NewValue: targetStatus}},
			&sec.Identity, tx)
	})
	if err != nil {
		return err
	}

	if settle.AggregateFunc != nil {
		if _, err := settle.AggregateFunc(taskId); err != nil {
			return err
		}
	}
	return nil
}
