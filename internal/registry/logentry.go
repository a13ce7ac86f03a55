package registry

import (
	"fmt"
	"time"
)

// Audit log action codes.
const (
	ActionAll               = -1
	ActionUpdate            = 0
	ActionComment           = 1
	ActionTag               = 2
	ActionRating            = 3
	ActionDelete            = 4
	ActionRestore           = 5
	ActionRename            = 6
	ActionMove              = 7
	ActionCopy              = 8
	ActionAdd               = 12
	ActionAddAssociation    = 13
	ActionRemoveAssociation = 14
)

var actionNames = map[int]string{
	ActionAll:               "all",
	ActionUpdate:            "update",
	ActionComment:           "comment",
	ActionTag:               "tag",
	ActionRating:            "rating",
	ActionDelete:            "delete",
	ActionRestore:           "restore",
	ActionRename:            "rename",
	ActionMove:              "move",
	ActionCopy:              "copy",
	ActionAdd:               "add",
	ActionAddAssociation:    "add-association",
	ActionRemoveAssociation: "remove-association",
}

// ActionName returns a human-readable name for an action code.
func ActionName(action int) string {
	if name, ok := actionNames[action]; ok {
		return name
	}
	return fmt.Sprintf("action-%d", action)
}

// ParseAction maps a name produced by ActionName back to its code.
func ParseAction(name string) (int, error) {
	for code, n := range actionNames {
		if n == name {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown log action: %q", name)
}

// LogEntry is one append-only audit record.
type LogEntry struct {
	Path       string
	User       string
	Date       time.Time
	Action     int
	ActionData string
}

// LogFilter selects log entries. Zero-valued fields are not filtered on,
// except Action where ActionAll means "any action".
type LogFilter struct {
	Path       string
	User       string
	From       time.Time
	To         time.Time
	Action     int
	Descending bool
}

// NewLogFilter returns a filter matching every entry, oldest first.
func NewLogFilter() LogFilter {
	return LogFilter{Action: ActionAll}
}
