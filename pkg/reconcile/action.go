package reconcile

import "github.com/newtron-network/rosctl/pkg/entry"

// Action is the corrective step chosen for one invocation.
type Action string

const (
	ActionNone    Action = "none"
	ActionCreate  Action = "create"
	ActionRemove  Action = "remove"
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
)

// Messages reported on the no-op branches.
const (
	MsgNoChange = "No change required."
	MsgNotFound = "Entry not found."
)

// Directive returns the device command word for the action.
func (a Action) Directive() string {
	if a == ActionCreate {
		return "add"
	}
	return string(a)
}

// Decide maps observed existence and the desired state to exactly one action.
// The message is set only when the action is ActionNone.
//
//	exists  present  -> none ("No change required.")
//	exists  absent   -> remove
//	exists  disabled -> disable
//	exists  enabled  -> enable
//	missing present  -> create
//	missing other    -> none ("Entry not found.")
func Decide(exists bool, desired entry.State) (Action, string) {
	if !exists {
		if desired == entry.StatePresent {
			return ActionCreate, ""
		}
		return ActionNone, MsgNotFound
	}
	switch desired {
	case entry.StateAbsent:
		return ActionRemove, ""
	case entry.StateDisabled:
		return ActionDisable, ""
	case entry.StateEnabled:
		return ActionEnable, ""
	default:
		return ActionNone, MsgNoChange
	}
}
