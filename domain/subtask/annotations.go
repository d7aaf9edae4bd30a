package subtask

import (
	"errors"
	"strconv"

	"annoflow/authority"
	"annoflow/bizerror"
	"annoflow/domain"
	"annoflow/idgen"
	"annoflow/persistence"
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	annotationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SaveAnnotationsFunc  = SaveAnnotations
	QueryAnnotationsFunc = QueryAnnotations
)

// SaveAnnotations stores row annotations for a subtask the caller owns.
// Content for a row replaces any earlier content of the same row. The first
// save moves a CLAIMED subtask to IN_PROGRESS.
func SaveAnnotations(subtaskId types.ID, rows []domain.AnnotationRowSaving, sec *session.Context) error {
	if !sec.HasCapability(authority.AnnotateSubtasks) {
		return bizerror.ErrForbidden
	}
	if len(rows) == 0 {
		return &bizerror.ErrBadParam{Cause: errors.New("no annotation rows given")}
	}

	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		subtask := domain.AnnotationSubtask{ID: subtaskId}
		if err := tx.Where(&subtask).First(&subtask).Error; err != nil {
			return err
		}
		if subtask.WorkerID != sec.Identity.ID {
			return bizerror.ErrForbidden
		}
		if subtask.Status != domain.SubtaskClaimed && subtask.Status != domain.SubtaskInProgress {
			return bizerror.ErrInvalidState
		}

		now := types.CurrentTimestamp()
		for _, row := range rows {
			if row.RowIndex < 0 || row.RowIndex >= subtask.RowCount {
				return &bizerror.ErrBadParam{Cause: errors.New("row index " + strconv.Itoa(row.RowIndex) + " out of range")}
			}
			if err := tx.Delete(domain.Annotation{}, "subtask_id = ? AND row_index = ?",
				subtaskId, row.RowIndex).Error; err != nil {
				return err
			}
			annotation := domain.Annotation{
				ID:         idgen.NextID(annotationIdWorker),
				SubtaskID:  subtaskId,
				RowIndex:   row.RowIndex,
				Content:    row.Content,
				Status:     domain.AnnotationPending,
				CreateTime: now,
			}
			if err := tx.Create(&annotation).Error; err != nil {
				return err
			}
		}

		if subtask.Status == domain.SubtaskClaimed {
			db := tx.Model(&domain.AnnotationSubtask{}).
				Where("id = ? AND status = ?", subtaskId, domain.SubtaskClaimed).
				Update(map[string]interface{}{"status": domain.SubtaskInProgress})
			if db.Error != nil {
				return db.Error
			}
			if db.RowsAffected != 1 {
				return bizerror.ErrInvalidState
			}
		}
		return nil
	})
}

func QueryAnnotations(subtaskId types.ID, sec *session.Context) (*[]domain.Annotation, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	subtask := domain.AnnotationSubtask{ID: subtaskId}
	if err := db.Where(&subtask).First(&subtask).Error; err != nil {
		return nil, err
	}

	var annotations []domain.Annotation
	if err := db.Where(&domain.Annotation{SubtaskID: subtaskId}).Order("row_index ASC").
		Find(&annotations).Error; err != nil {
		return nil, err
	}
	return &annotations, nil
}
