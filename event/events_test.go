package event_test

import (
	"annoflow/event"
	"annoflow/session"
	"errors"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestCreateEvent(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return error when failed to persist event", func(t *testing.T) {
		testErr := errors.New("test error")
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			return testErr
		}
		var tx = &gorm.DB{Value: 10000}
		err := event.CreateEvent("SUBTASK", 1234, "subtask1234", event.EventCategoryClaimed,
			[]event.UpdatedProperty{{PropertyName: "Status", PropertyDesc: "Status",
				OldValue: "UNCLAIMED", NewValue: "CLAIMED"}},
			&session.Identity{ID: 333, Name: "user333"},
			tx,
		)
		Expect(err).To(Equal(testErr))
	})

	t.Run("should be able to create events", func(t *testing.T) {
		var ev event.EventRecord
		var db *gorm.DB
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			ev = *record
			db = tx
			return nil
		}

		var tx = &gorm.DB{Value: 10000}
		err := event.CreateEvent("SUBTASK", 1234, "subtask1234", event.EventCategoryClaimed,
			[]event.UpdatedProperty{{PropertyName: "Status", PropertyDesc: "Status",
				OldValue: "UNCLAIMED", NewValue: "CLAIMED"}},
			&session.Identity{ID: 333, Name: "user333"},
			tx,
		)
		Expect(err).To(BeNil())

		Expect(ev.SourceType).To(Equal("SUBTASK"))
		Expect(ev.SourceId).To(Equal(types.ID(1234)))
		Expect(ev.SourceDesc).To(Equal("subtask1234"))
		Expect(ev.EventCategory).To(Equal(event.EventCategory(event.EventCategoryClaimed)))
		Expect(ev.UpdatedProperties).To(Equal(event.UpdatedProperties{{PropertyName: "Status", PropertyDesc: "Status",
			OldValue: "UNCLAIMED", NewValue: "CLAIMED"}}))
		Expect(ev.CreatorId).To(Equal(types.ID(333)))
		Expect(ev.CreatorName).To(Equal("user333"))
		Expect(ev.Timestamp).ToNot(BeZero())

		Expect(db).To(Equal(tx))
	})
}
