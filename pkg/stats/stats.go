// Package stats records which raw vocabulary values a run has seen, how often,
// and which soft anomalies were raised. It is purely observational: nothing in
// this package can change a mapping result.
//
// Observations are addressed by a path of up to four levels, for example
//
//	rec.ObserveValue("E1", "!raw", "link", "entityStatement", "OpenOwnership Register|")
//
// Every level along the path is counted, and the deepest level keeps a bounded
// sample of distinct values.
package stats

// Recorder receives observations. Implementations must tolerate paths that
// have never been seen before.
type Recorder interface {
	// Observe counts one occurrence of path.
	Observe(path ...string)

	// ObserveValue counts one occurrence of path and offers value as a sample.
	ObserveValue(value any, path ...string)
}

// Discard is a Recorder that drops every observation.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Observe(...string)           {}
func (discard) ObserveValue(any, ...string) {}

// Tee returns a Recorder that forwards every observation to each non-nil recorder.
func Tee(recorders ...Recorder) Recorder {
	out := make(tee, 0, len(recorders))
	for _, r := range recorders {
		if r != nil && r != Discard {
			out = append(out, r)
		}
	}
	switch len(out) {
	case 0:
		return Discard
	case 1:
		return out[0]
	}
	return out
}

type tee []Recorder

func (t tee) Observe(path ...string) {
	for _, r := range t {
		r.Observe(path...)
	}
}

func (t tee) ObserveValue(value any, path ...string) {
	for _, r := range t {
		r.ObserveValue(value, path...)
	}
}

// Category names used as the first path level.
const (
	Raw   = "!raw"
	Alert = "!alert"
	Info  = "!info"
	Run   = "!run"
)
