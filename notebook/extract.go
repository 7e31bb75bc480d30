package notebook

import "github.com/criyle/go-nbjudge/value"

// Extract returns the json values emitted by result and stdout records, in
// order. Records whose text is not a single json value are skipped, stderr is
// never inspected.
func Extract(a *Artifact) []value.Value {
	if a == nil {
		return nil
	}
	ret := make([]value.Value, 0, len(a.Outputs))
	for _, o := range a.Outputs {
		switch o.Kind {
		case KindResult, KindStdout:
		default:
			continue
		}
		v, err := value.ParseString(o.Text)
		if err != nil {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}
