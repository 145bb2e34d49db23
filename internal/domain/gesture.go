package domain

import "math"

// SwipeDirection is the outcome of a committed swipe.
type SwipeDirection string

const (
	// SwipeLeft dislikes the current quote.
	SwipeLeft SwipeDirection = "left"

	// SwipeRight likes the current quote.
	SwipeRight SwipeDirection = "right"
)

// Valid reports whether d is a known direction.
func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

// SwipeHistoryEntry records a committed swipe so it can be undone.
type SwipeHistoryEntry struct {
	Index     int            `json:"index"`
	Direction SwipeDirection `json:"direction"`
}

// Offset is a drag offset in pixels relative to the drag origin.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GesturePhase is the single source of truth for what drives the card offset.
type GesturePhase int

const (
	// PhaseIdle means the card rests at the origin.
	PhaseIdle GesturePhase = iota

	// PhaseDragging means pointer movement drives the offset.
	PhaseDragging

	// PhaseCommitting means a swipe was committed and the exit animation runs.
	PhaseCommitting

	// PhaseUndoing means the reverse slide of an undo runs.
	PhaseUndoing
)

// String returns a human-readable name for the phase.
func (p GesturePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseCommitting:
		return "committing"
	case PhaseUndoing:
		return "undoing"
	default:
		return "unknown"
	}
}

// GestureState is a snapshot of the tracker for rendering.
type GestureState struct {
	Phase     string          `json:"phase"`
	Offset    Offset          `json:"offset"`
	Direction *SwipeDirection `json:"direction,omitempty"`
	History   int             `json:"historyDepth"`
}

// GestureTracker tracks pointer drags on the current card and keeps the undo
// history. Dragging and animating are phases of one field, so at most one of
// them drives the offset at a time.
//
// GestureTracker is not safe for concurrent use; the owning session
// serializes access.
type GestureTracker struct {
	phase     GesturePhase
	start     Offset
	offset    Offset
	direction *SwipeDirection
	history   []SwipeHistoryEntry
	maxDepth  int
}

// NewGestureTracker creates a tracker. maxDepth bounds the undo history;
// zero or negative means unbounded.
func NewGestureTracker(maxDepth int) *GestureTracker {
	return &GestureTracker{maxDepth: maxDepth}
}

// Phase returns the current phase.
func (g *GestureTracker) Phase() GesturePhase {
	return g.phase
}

// IsDragging reports whether a pointer drag is in progress.
func (g *GestureTracker) IsDragging() bool {
	return g.phase == PhaseDragging
}

// IsAnimating reports whether a commit or undo animation is running.
func (g *GestureTracker) IsAnimating() bool {
	return g.phase == PhaseCommitting || g.phase == PhaseUndoing
}

// IsIdle reports whether the card rests with no gesture in flight.
func (g *GestureTracker) IsIdle() bool {
	return g.phase == PhaseIdle
}

// Offset returns the current offset.
func (g *GestureTracker) Offset() Offset {
	return g.offset
}

// Direction returns the committed direction, or nil.
func (g *GestureTracker) Direction() *SwipeDirection {
	return g.direction
}

// DragStart records the pointer origin. Ignored while an animation runs.
func (g *GestureTracker) DragStart(x, y float64) bool {
	if g.IsAnimating() {
		return false
	}

	g.phase = PhaseDragging
	g.start = Offset{X: x, Y: y}
	g.offset = Offset{}
	g.direction = nil

	return true
}

// DragMove stores and returns the offset from the drag origin.
// Outside a drag it returns the current offset unchanged.
func (g *GestureTracker) DragMove(x, y float64) Offset {
	if g.phase != PhaseDragging {
		return g.offset
	}

	g.offset = Offset{X: x - g.start.X, Y: y - g.start.Y}

	return g.offset
}

// DragEnd finishes a drag. If |offset.x| exceeds threshold a direction is
// committed and returned; otherwise the card snaps back and nil is returned.
func (g *GestureTracker) DragEnd(threshold float64) *SwipeDirection {
	if g.phase != PhaseDragging {
		return nil
	}

	if math.Abs(g.offset.X) > threshold {
		dir := SwipeLeft
		if g.offset.X > 0 {
			dir = SwipeRight
		}

		g.phase = PhaseCommitting
		g.direction = &dir

		return &dir
	}

	g.phase = PhaseIdle
	g.offset = Offset{}
	g.direction = nil

	return nil
}

// Animate drives the offset programmatically, bypassing DragMove.
// phase must be PhaseCommitting or PhaseUndoing.
func (g *GestureTracker) Animate(offset Offset, phase GesturePhase) bool {
	if phase != PhaseCommitting && phase != PhaseUndoing {
		return false
	}

	g.phase = phase
	g.offset = offset

	if phase == PhaseCommitting {
		dir := SwipeLeft
		if offset.X > 0 {
			dir = SwipeRight
		}

		g.direction = &dir
	} else {
		g.direction = nil
	}

	return true
}

// Reset clears every transient flag and offset. History is kept.
func (g *GestureTracker) Reset() {
	g.phase = PhaseIdle
	g.start = Offset{}
	g.offset = Offset{}
	g.direction = nil
}

// Push appends a committed swipe to the undo history.
func (g *GestureTracker) Push(entry SwipeHistoryEntry) {
	g.history = append(g.history, entry)
	if g.maxDepth > 0 && len(g.history) > g.maxDepth {
		g.history = g.history[len(g.history)-g.maxDepth:]
	}
}

// Pop removes and returns the most recent history entry.
func (g *GestureTracker) Pop() (SwipeHistoryEntry, bool) {
	if len(g.history) == 0 {
		return SwipeHistoryEntry{}, false
	}

	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	return last, true
}

// History returns a copy of the undo history, oldest first.
func (g *GestureTracker) History() []SwipeHistoryEntry {
	out := make([]SwipeHistoryEntry, len(g.history))
	copy(out, g.history)

	return out
}

// ClearHistory drops the undo history.
func (g *GestureTracker) ClearHistory() {
	g.history = nil
}

// Snapshot returns the renderable state.
func (g *GestureTracker) Snapshot() GestureState {
	return GestureState{
		Phase:     g.phase.String(),
		Offset:    g.offset,
		Direction: g.direction,
		History:   len(g.history),
	}
}
