package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gerrors "github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// ErrNoRoute is returned when a router produced nothing for an edge.
var ErrNoRoute = errors.New("no route produced")

// Mode selects how edges follow dragged nodes.
type Mode uint8

const (
	ModeStraight Mode = iota
	ModeSpline
	ModeRectilinear
	ModeIncremental
)

var modeNames = [...]string{"straight", "spline", "rectilinear", "incremental"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseMode parses a mode name as used in configuration files.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, gerrors.New(gerrors.ErrCodeInvalidConfig, "unknown routing mode %q", s)
}

// =============================================================================
// Ports
// =============================================================================

// PortKind says how an edge end is anchored.
type PortKind uint8

const (
	PortNone PortKind = iota
	PortBoundary
	PortFloating
)

// Port anchors an edge end to a node. Boundary ports sit at Param on the
// node's boundary; floating ports sit at Point inside the node.
type Port struct {
	Kind  PortKind
	Node  scene.ID
	Param float64
	Point geom.Point
}

// Valid reports whether the port anchors anything.
func (p Port) Valid() bool { return p.Kind != PortNone }

// =============================================================================
// Collaborators
// =============================================================================

// Route is a computed edge route.
type Route struct {
	Curve    *geom.Curve
	Polyline *polyline.Polyline
}

// Router computes edge routes without mutating the scene.
type Router interface {
	// RouteAll routes the given edges, or every visible edge when ids is empty.
	RouteAll(ctx context.Context, s *scene.Scene, ids []scene.ID, mode Mode) (map[scene.ID]Route, error)

	// RouteToPoint routes from a port to a free point, used while drawing a new edge.
	RouteToPoint(ctx context.Context, s *scene.Scene, source Port, target geom.Point) (Route, error)

	// RouteToPort routes between two ports.
	RouteToPort(ctx context.Context, s *scene.Scene, source, target Port) (Route, error)
}

// LabelPlacer positions edge labels. It returns label centers keyed by label ID.
type LabelPlacer interface {
	PlaceLabels(ctx context.Context, s *scene.Scene, edges []scene.ID) (map[scene.ID]geom.Point, error)
}

// LayoutSettings tune a relayout of one scope.
type LayoutSettings struct {
	Engine         string
	NodeSeparation float64
}

// SettingsResolver returns the settings for a cluster scope ("" is the root).
type SettingsResolver func(scope scene.ID) LayoutSettings

// Layout is the result of a relayout: node centers, cluster boxes and edge routes.
type Layout struct {
	Nodes    map[scene.ID]geom.Point
	Clusters map[scene.ID]geom.Rect
	Edges    map[scene.ID]Route
}

// Relayouter re-lays the visible content of a scope.
type Relayouter interface {
	Relayout(ctx context.Context, s *scene.Scene, scope scene.ID, resolve SettingsResolver) (*Layout, error)
}

// Options shared by the built-in curve construction.
type Options struct {
	ArrowheadLength float64
	MinCurveSize    float64
	SelfLoopSize    float64
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{ArrowheadLength: 10, MinCurveSize: 5, SelfLoopSize: 15}
}

// PortPoint resolves a port to a position.
func PortPoint(s *scene.Scene, p Port) geom.Point {
	if p.Kind == PortBoundary {
		if n := s.Node(p.Node); n != nil {
			return n.Boundary.At(p.Param)
		}
	}
	return p.Point
}
