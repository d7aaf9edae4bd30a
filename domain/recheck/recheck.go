package recheck

import (
	"errors"
	"os"
	"strconv"

	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/common"
	"annoflow/domain"
	"annoflow/domain/settle"
	"annoflow/event"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	RecheckCorrectnessFunc = RecheckCorrectness
)

type RecheckConfig struct {
	Policy CorrectnessPolicy

	// ReopenRejected applies a rejected verdict as UNCLAIMED with the
	// worker cleared, so the row range can be reclaimed. Off by default:
	// the observed surface never reopens terminal subtasks.
	ReopenRejected bool
}

var Config = RecheckConfig{Policy: ConsensusPolicy{MinAgreement: 1.0}}

// ConfigureFromEnv reads the recheck policy once at process start.
func ConfigureFromEnv() error {
	if raw := os.Getenv("ANNOFLOW_MIN_AGREEMENT"); raw != "" {
		minAgreement, err := strconv.ParseFloat(raw, 64)
		if err != nil || minAgreement < 0 || minAgreement > 1 {
			return errors.New("invalid ANNOFLOW_MIN_AGREEMENT: " + raw)
		}
		Config.Policy = ConsensusPolicy{MinAgreement: minAgreement}
	}
	if raw := os.Getenv("ANNOFLOW_REOPEN_REJECTED"); raw != "" {
		reopen, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("invalid ANNOFLOW_REOPEN_REJECTED: " + raw)
		}
		Config.ReopenRejected = reopen
	}
	return nil
}

type RecheckResult struct {
	CheckedCount int `json:"checkedCount"`
}

// RecheckCorrectness re-derives the status of every submitted subtask of a
// task from its stored annotations, without a human pass. Each subtask is
// evaluated by the configured policy and updated in its own transaction, so
// rechecks of different subtasks never interfere. A run over unchanged
// content re-computes the same verdicts and leaves state untouched, which
// keeps the operation idempotent and the checked count stable.
func RecheckCorrectness(taskId types.ID, sec *session.Context) (*RecheckResult, error) {
	if !sec.HasCapability(authority.RecheckTasks) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	task := domain.AnnotationTask{ID: taskId}
	if err := db.Where(&task).First(&task).Error; err != nil {
		return nil, err
	}
	if task.PublisherID != sec.Identity.ID && !sec.HasCapability(authority.ManageAnyTask) {
		return nil, bizerror.ErrForbidden
	}

	var submitted []domain.AnnotationSubtask
	if err := db.Where("task_id = ? AND status IN (?)", taskId,
		[]string{domain.SubtaskPendingReview, domain.SubtaskApproved, domain.SubtaskRejected}).
		Order("start_row ASC").Find(&submitted).Error; err != nil {
		return nil, err
	}

	result := RecheckResult{}
	changed := false
	for i := range submitted {
		subtaskChanged, err := recheckSubtask(&submitted[i], sec)
		if err != nil {
			return nil, err
		}
		changed = changed || subtaskChanged
		result.CheckedCount++
	}

	if changed && settle.AggregateFunc != nil {
		if _, err := settle.AggregateFunc(taskId); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func recheckSubtask(subtask *domain.AnnotationSubtask, sec *session.Context) (bool, error) {
	changed := false
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		var annotations []domain.Annotation
		if err := tx.Where(&domain.Annotation{SubtaskID: subtask.ID}).Order("row_index ASC").
			Find(&annotations).Error; err != nil {
			return err
		}

		verdict, reason := Config.Policy.Evaluate(subtask, annotations)

		targetStatus := domain.SubtaskApproved
		annotationStatus := domain.AnnotationApproved
		if verdict == VerdictRejected {
			targetStatus = domain.SubtaskRejected
			annotationStatus = domain.AnnotationRejected
			if Config.ReopenRejected {
				targetStatus = domain.SubtaskUnclaimed
			}
		}
		if subtask.Status == targetStatus {
			return nil
		}

		updates := map[string]interface{}{"status": targetStatus}
		if targetStatus == domain.SubtaskUnclaimed {
			updates["worker_id"] = 0
			updates["complete_time"] = types.Timestamp{}
		}

		// guard against a concurrent human review of the same subtask
		db := tx.Model(&domain.AnnotationSubtask{}).
			Where("id = ? AND status = ?", subtask.ID, subtask.Status).Update(updates)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return nil
		}
		if err := tx.Model(&domain.Annotation{}).Where("subtask_id = ?", subtask.ID).
			Update(map[string]interface{}{"status": annotationStatus}).Error; err != nil {
			return err
		}

		if subtask.Status == domain.SubtaskApproved {
			common.Log.WithField("subtaskId", subtask.ID).WithField("reason", reason).
				Warn("recheck downgraded an approved subtask")
		}
		changed = true
		return event.CreateEvent("SUBTASK", subtask.ID, subtask.Title, event.EventCategoryRechecked,
			[]event.UpdatedProperty{{PropertyName: "Status", PropertyDesc: "Status",
				OldValue: subtask.Status, NewValue: targetStatus, NewValueDesc: reason}},
			&sec.Identity, tx)
	})
	return changed, err
}
