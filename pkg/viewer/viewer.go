// Package viewer is the notification surface between the editing core and
// whatever draws the scene.
//
// The core never calls the viewer directly. It pushes [Event] values into a
// [Notifier]; the session drains the queue with [Notifier.Flush] after each
// pointer event or command, delivering the events to every subscribed
// [Viewer] in order. Repeated changes to the same entity within one drain
// are delivered once, and a full invalidation supersedes per-entity changes.
package viewer

import "github.com/matzehuels/graphedit/pkg/scene"

// EventKind identifies a notification.
type EventKind uint8

const (
	EntityChanged EventKind = iota
	FullInvalidate
	EdgeAdded
	EdgeRemoved
	NodeAdded
	NodeRemoved
)

func (k EventKind) String() string {
	switch k {
	case EntityChanged:
		return "changed"
	case FullInvalidate:
		return "invalidate"
	case EdgeAdded:
		return "edge-added"
	case EdgeRemoved:
		return "edge-removed"
	case NodeAdded:
		return "node-added"
	case NodeRemoved:
		return "node-removed"
	}
	return "unknown"
}

// Event is one queued notification. ID is empty for FullInvalidate.
type Event struct {
	Kind EventKind
	ID   scene.ID
}

// Viewer receives notifications.
type Viewer interface {
	OnEntityChanged(id scene.ID)
	OnFullInvalidate()
	OnEdgeAdded(id scene.ID)
	OnEdgeRemoved(id scene.ID)
	OnNodeAdded(id scene.ID)
	OnNodeRemoved(id scene.ID)
}

// Sink accepts events. *Notifier implements it.
type Sink interface {
	Push(ev Event)
}

// Notifier queues events until Flush.
type Notifier struct {
	queue     []Event
	listeners []Viewer
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier { return &Notifier{} }

// Subscribe adds v to the listeners. Listeners are called in subscription order.
func (n *Notifier) Subscribe(v Viewer) { n.listeners = append(n.listeners, v) }

// Push queues ev.
func (n *Notifier) Push(ev Event) { n.queue = append(n.queue, ev) }

// Changed queues an EntityChanged event for each id.
func (n *Notifier) Changed(ids ...scene.ID) {
	for _, id := range ids {
		n.Push(Event{Kind: EntityChanged, ID: id})
	}
}

// Pending returns the number of queued events.
func (n *Notifier) Pending() int { return len(n.queue) }

// Flush delivers and clears the queue. It returns the events delivered.
func (n *Notifier) Flush() []Event {
	q := n.queue
	n.queue = nil
	full := false
	for _, ev := range q {
		if ev.Kind == FullInvalidate {
			full = true
			break
		}
	}
	var out []Event
	seen := make(map[scene.ID]bool)
	sent := false
	for _, ev := range q {
		switch ev.Kind {
		case EntityChanged:
			if full || seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
		case FullInvalidate:
			if sent {
				continue
			}
			sent = true
		}
		out = append(out, ev)
	}
	for _, ev := range out {
		for _, v := range n.listeners {
			deliver(v, ev)
		}
	}
	return out
}

func deliver(v Viewer, ev Event) {
	switch ev.Kind {
	case EntityChanged:
		v.OnEntityChanged(ev.ID)
	case FullInvalidate:
		v.OnFullInvalidate()
	case EdgeAdded:
		v.OnEdgeAdded(ev.ID)
	case EdgeRemoved:
		v.OnEdgeRemoved(ev.ID)
	case NodeAdded:
		v.OnNodeAdded(ev.ID)
	case NodeRemoved:
		v.OnNodeRemoved(ev.ID)
	}
}

// Funcs adapts optional callbacks to Viewer. Nil fields are skipped.
type Funcs struct {
	EntityChanged  func(scene.ID)
	FullInvalidate func()
	EdgeAdded      func(scene.ID)
	EdgeRemoved    func(scene.ID)
	NodeAdded      func(scene.ID)
	NodeRemoved    func(scene.ID)
}

var _ Viewer = Funcs{}

func (f Funcs) OnEntityChanged(id scene.ID) {
	if f.EntityChanged != nil {
		f.EntityChanged(id)
	}
}

func (f Funcs) OnFullInvalidate() {
	if f.FullInvalidate != nil {
		f.FullInvalidate()
	}
}

func (f Funcs) OnEdgeAdded(id scene.ID) {
	if f.EdgeAdded != nil {
		f.EdgeAdded(id)
	}
}

func (f Funcs) OnEdgeRemoved(id scene.ID) {
	if f.EdgeRemoved != nil {
		f.EdgeRemoved(id)
	}
}

func (f Funcs) OnNodeAdded(id scene.ID) {
	if f.NodeAdded != nil {
		f.NodeAdded(id)
	}
}

func (f Funcs) OnNodeRemoved(id scene.ID) {
	if f.NodeRemoved != nil {
		f.NodeRemoved(id)
	}
}
