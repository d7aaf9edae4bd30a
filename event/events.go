package event

import (
	"annoflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// CreateEvent appends an audit record inside the caller's transaction. Every
// status transition of a subtask, including programmatic downgrades by the
// recheck engine, must leave a record here.
func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	updatedProperties []UpdatedProperty, identity *session.Identity, db *gorm.DB) error {

	record := EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,
		},
		Timestamp: types.CurrentTimestamp(),
	}
	return EventPersistCreateFunc(&record, db)
}
