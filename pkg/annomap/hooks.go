package annomap

import "time"

// Hooks receives events from render passes. Implementations used with
// RenderBatch must be safe for concurrent use.
type Hooks interface {
	// OnSimplify records one adaptive simplification.
	OnSimplify(kind string, before, after, iterations int)

	// OnMerge records the merge of a road's fragments into pieces.
	OnMerge(road string, fragments, pieces int)

	// OnPlacement records the state that accepted a label and its overlap.
	OnPlacement(state string, overlap float64)

	// OnWarning records a recovered condition.
	OnWarning(kind string, err error)

	// OnRender records a finished pass.
	OnRender(duration time.Duration, commands int, err error)
}

// NoopHooks ignores every event.
type NoopHooks struct{}

func (NoopHooks) OnSimplify(string, int, int, int) {}
func (NoopHooks) OnMerge(string, int, int) {}
func (NoopHooks) OnPlacement(string, float64) {}
func (NoopHooks) OnWarning(string, error) {}
func (NoopHooks) OnRender(time.Duration, int, error) {}

func (o Options) hooks() Hooks {
	if o.Hooks != nil {
		return o.Hooks
	}
	return NoopHooks{}
}
