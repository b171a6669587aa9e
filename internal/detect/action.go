package detect

// Context tags what kind of input activity produced an action point.
type Context string

const (
	ContextClickCluster    Context = "clickCluster"
	ContextDeliberateClick Context = "deliberateClick"
	ContextTyping          Context = "typing"
	ContextScrollStop      Context = "scrollStop"
)

// ActionPoint is a scored, timestamped candidate moment of user focus
// derived from input events. Ephemeral: recomputed on demand, never persisted.
type ActionPoint struct {
	TimeMs     float64
	X          float64
	Y          float64
	Context    Context
	Importance float64 // always in [0,1]
	DurationMs float64
	Deliberate bool
}
