package state_test

import (
	"annoflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var sm *state.StateMachine

	pending := state.State{Name: "PENDING", Category: state.Open}
	doing := state.State{Name: "DOING", Category: state.InProcess}
	done := state.State{Name: "DONE", Category: state.Done}

	BeforeEach(func() {
		sm = state.NewStateMachine(
			[]state.State{pending, doing, done},
			[]state.Transition{
				{Name: "begin", From: pending, To: doing},
				{Name: "finish", From: doing, To: done},
				{Name: "cancel", From: doing, To: pending},
			},
		)
	})

	Describe("FindState", func() {
		It("should find state by name", func() {
			s, found := sm.FindState("DOING")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(doing))
		})
		It("should report missing state", func() {
			_, found := sm.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by both ends", func() {
			Expect(sm.AvailableTransitions("PENDING", "DOING")).To(Equal(
				[]state.Transition{{Name: "begin", From: pending, To: doing}}))
		})
		It("should treat empty name as wildcard", func() {
			Expect(sm.AvailableTransitions("DOING", "")).To(HaveLen(2))
			Expect(sm.AvailableTransitions("", "DOING")).To(HaveLen(1))
			Expect(sm.AvailableTransitions("", "")).To(HaveLen(3))
		})
		It("should return empty result for unlinked states", func() {
			Expect(sm.AvailableTransitions("PENDING", "DONE")).To(BeEmpty())
		})
	})

	Describe("CanTransit", func() {
		It("should only accept declared transitions", func() {
			Expect(sm.CanTransit("PENDING", "DOING")).To(BeTrue())
			Expect(sm.CanTransit("DOING", "DONE")).To(BeTrue())
			Expect(sm.CanTransit("PENDING", "DONE")).To(BeFalse())
			Expect(sm.CanTransit("DONE", "DOING")).To(BeFalse())
		})
	})
})
