// Package notebook defines the executed artifact consumed by the grader and
// extracts the json values a notebook emitted.
package notebook

// OutputKind defines the kind of an output record
type OutputKind int

// Output kinds
const (
	KindOther  OutputKind = iota
	KindResult            // execute_result / display_data text/plain
	KindStdout
	KindStderr
)

func (k OutputKind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	default:
		return "other"
	}
}

// Output is a single output record of an executed artifact
type Output struct {
	Kind OutputKind
	Text string
}

// Artifact is the ordered output records of an executed notebook,
// in document order across all cells
type Artifact struct {
	Outputs []Output
}

// Execution is the outcome of running an artifact outside of the grader.
// The zero Execution is a failure.
type Execution struct {
	Artifact *Artifact
	Reason   string // failure reason, if any

	failed bool
}

// Executed wraps a successfully executed artifact
func Executed(a *Artifact) Execution {
	return Execution{Artifact: a}
}

// ExecutionFailed is the sentinel for an artifact that never produced outputs
func ExecutionFailed(reason string) Execution {
	return Execution{Reason: reason, failed: true}
}

// Failed reports whether the execution did not produce an artifact
func (e Execution) Failed() bool {
	return e.failed || e.Artifact == nil
}
