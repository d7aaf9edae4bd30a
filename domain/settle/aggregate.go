package settle

import (
	"errors"
	"os"
	"strconv"

	"annoflow/account"
	"annoflow/common"
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
	settlementIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// settlement is driven by the aggregator, not by the reviewing caller
	settlementActor = session.Identity{Name: "system"}

	AggregateFunc = Aggregate
)

type AggregationConfig struct {
	// ApprovalThreshold is the minimum fraction of APPROVED subtasks for
	// the task to be marked approved once all subtasks are terminal.
	ApprovalThreshold float64
}

var Config = AggregationConfig{ApprovalThreshold: 1.0}

// ConfigureFromEnv reads the aggregation policy once at process start.
func ConfigureFromEnv() error {
	raw := os.Getenv("ANNOFLOW_APPROVAL_THRESHOLD")
	if raw == "" {
		return nil
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil || threshold < 0 || threshold > 1 {
		return errors.New("invalid ANNOFLOW_APPROVAL_THRESHOLD: " + raw)
	}
	Config.ApprovalThreshold = threshold
	return nil
}

// Aggregate rolls subtask outcomes into task-level approval and settles
// points for approved work. It is safe to call repeatedly: settlement is
// keyed by subtask id and payout happens at most once per subtask.
func Aggregate(taskId types.ID) (*AggregateResult, error) {
	result := AggregateResult{}

	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		task := domain.AnnotationTask{ID: taskId}
		if err := tx.Where(&task).First(&task).Error; err != nil {
			return err
		}

		var subtasks []domain.AnnotationSubtask
		if err := tx.Where(&domain.AnnotationSubtask{TaskID: taskId}).Find(&subtasks).Error; err != nil {
			return err
		}

		result.SubtaskCount = len(subtasks)
		for _, subtask := range subtasks {
			if !subtask.Terminal() {
				return nil
			}
			if subtask.Status == domain.SubtaskApproved {
				result.ApprovedCount++
			}
		}
		if result.SubtaskCount == 0 {
			return nil
		}
		result.Terminal = true

		approvedFraction := float64(result.ApprovedCount) / float64(result.SubtaskCount)
		if approvedFraction < Config.ApprovalThreshold {
			return nil
		}
		result.TaskApproved = true
		if !task.Approved {
			if err := tx.Model(&domain.AnnotationTask{ID: taskId}).Update(map[string]interface{}{"approved": true}).Error; err != nil {
				return err
			}
		}

		for _, subtask := range subtasks {
			if subtask.Status != domain.SubtaskApproved || subtask.WorkerID == 0 {
				continue
			}
			settled, err := settleSubtask(&subtask, tx)
			if err != nil {
				return err
			}
			if settled {
				result.SettledCount++
				result.SettledPoints += subtask.Points
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func settleSubtask(subtask *domain.AnnotationSubtask, tx *gorm.DB) (bool, error) {
	var existing SettlementRecord
	err := tx.Where(&SettlementRecord{SubtaskID: subtask.ID}).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	record := SettlementRecord{
		ID:         idgen.NextID(settlementIdWorker),
		SubtaskID:  subtask.ID,
		TaskID:     subtask.TaskID,
		WorkerID:   subtask.WorkerID,
		Points:     subtask.Points,
		SettleTime: types.CurrentTimestamp(),
	}
	// the unique index on subtask_id rejects a concurrent double settlement
	if err := tx.Create(&record).Error; err != nil {
		return false, err
	}
	if err := tx.Model(&account.User{ID: subtask.WorkerID}).
		Update("points", gorm.Expr("points + ?", subtask.Points)).Error; err != nil {
		return false, err
	}

	if err := event.CreateEvent("SUBTASK", subtask.ID, subtask.Title, event.EventCategorySettled,
		[]event.UpdatedProperty{{PropertyName: "Points", PropertyDesc: "Points",
			OldValue: "0", NewValue: strconv.Itoa(subtask.Points),
			NewValueDesc: "settled to worker " + subtask.WorkerID.String()}},
		&settlementActor, tx); err != nil {
		return false, err
	}

	common.Log.WithField("subtaskId", subtask.ID).WithField("workerId", subtask.WorkerID).
		WithField("points", subtask.Points).Info("subtask settled")
	return true, nil
}
