package events

// Event is an entry of an event list.
type Event interface {
	// IsDisabled reports whether the event is skipped.
	IsDisabled() bool
}

// StandardEvent runs its actions and sub-events when all of its conditions
// hold. Objects picked by the conditions are what the actions and the
// sub-events operate on.
type StandardEvent struct {
	Conditions []*Instruction
	Actions    []*Instruction
	SubEvents  List
	Disabled   bool
}

// IsDisabled implements Event.
func (e *StandardEvent) IsDisabled() bool { return e.Disabled }

// ForEachEvent repeats its conditions, actions and sub-events once per
// concerned instance of Object, with that instance as the only one picked.
type ForEachEvent struct {
	Object     string
	Conditions []*Instruction
	Actions    []*Instruction
	SubEvents  List
	Disabled   bool
}

// IsDisabled implements Event.
func (e *ForEachEvent) IsDisabled() bool { return e.Disabled }

// List is an ordered list of events.
type List []Event

// Walk calls fn for every instruction in the list, depth first, including
// sub-instructions and the instructions of sub-events.
func (l List) Walk(fn func(*Instruction)) {
	for _, ev := range l {
		switch e := ev.(type) {
		case *StandardEvent:
			walkInstructions(e.Conditions, fn)
			walkInstructions(e.Actions, fn)
			e.SubEvents.Walk(fn)
		case *ForEachEvent:
			walkInstructions(e.Conditions, fn)
			walkInstructions(e.Actions, fn)
			e.SubEvents.Walk(fn)
		}
	}
}

// Count returns the number of instructions reachable from the list.
func (l List) Count() int {
	n := 0
	l.Walk(func(*Instruction) { n++ })
	return n
}

func walkInstructions(list []*Instruction, fn func(*Instruction)) {
	for _, instr := range list {
		fn(instr)
		walkInstructions(instr.SubInstructions(), fn)
	}
}

// Compound condition types. They are evaluated by the engine over the
// instruction's sub-instructions instead of through the dispatch table.
const (
	OrCondition  = "BuiltinCommonInstructions::Or"
	AndCondition = "BuiltinCommonInstructions::And"
	NotCondition = "BuiltinCommonInstructions::Not"
)

// IsCompound reports whether typ is one of the compound condition types.
func IsCompound(typ string) bool {
	switch typ {
	case OrCondition, AndCondition, NotCondition:
		return true
	}
	return false
}
