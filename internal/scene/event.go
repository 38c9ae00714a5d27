package scene

import "github.com/Slicer/Slicer-sub006/internal/pubsub"

// EventKind identifies what changed in a Registry.
type EventKind int

const (
	NodeAdded EventKind = iota + 1
	NodeRemoved
	Modified
	StartImport
	EndImport
	StartClear
	EndClear
)

func (k EventKind) String() string {
	switch k {
	case NodeAdded:
		return "node_added"
	case NodeRemoved:
		return "node_removed"
	case Modified:
		return "modified"
	case StartImport:
		return "start_import"
	case EndImport:
		return "end_import"
	case StartClear:
		return "start_clear"
	case EndClear:
		return "end_clear"
	default:
		return "unknown"
	}
}

// pubsubType maps a kind onto the broker's coarse event types.
func (k EventKind) pubsubType() pubsub.EventType {
	switch k {
	case NodeAdded:
		return pubsub.CreatedEvent
	case NodeRemoved:
		return pubsub.DeletedEvent
	default:
		return pubsub.UpdatedEvent
	}
}

// Event describes one change. NodeID and NodeType are set for NodeAdded and
// NodeRemoved only.
type Event struct {
	Kind     EventKind
	NodeID   ID
	NodeType string
}

// Observer receives registry change notifications.
type Observer interface {
	OnSceneChanged(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnSceneChanged calls f(e).
func (f ObserverFunc) OnSceneChanged(e Event) { f(e) }

// Token identifies a registered observer.
type Token uint64
