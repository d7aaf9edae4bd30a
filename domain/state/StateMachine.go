package state

// stateless object, just used for state computing
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

type Category uint

const (
	Open Category = iota
	InProcess
	InReview
	Done
	Rejected
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From.Name) && (toState == "" || toState == transition.To.Name) {
			r = append(r, transition)
		}
	}
	return r
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// CanTransit reports whether at least one transition links the two states.
func (sm *StateMachine) CanTransit(fromState string, toState string) bool {
	return len(sm.AvailableTransitions(fromState, toState)) > 0
}
