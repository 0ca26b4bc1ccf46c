package artisign

// Action is what a run did with one input.
type Action string

const (
	// ActionSigned means the signing service produced the output.
	ActionSigned Action = "signed"
	// ActionReused means a previously signed artifact was copied.
	ActionReused Action = "reused"
	// ActionCopied means signing was skipped and the input was copied.
	ActionCopied Action = "copied"
)

// Outcome records the result for a single input file.
type Outcome struct {
	Source string
	Target string
	Action Action
	// ReusedFrom is the signed artifact copied for ActionReused.
	ReusedFrom string
	// Bytes is the size of the written target.
	Bytes int64
	// Transfer is set for ActionSigned.
	Transfer Transfer
}

// Report lists the outcomes of a run in input order.
type Report struct {
	Outcomes []Outcome
}

// Count returns how many outcomes have the given action.
func (r *Report) Count(action Action) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// TotalBytes returns the combined size of all written targets.
func (r *Report) TotalBytes() int64 {
	if r == nil {
		return 0
	}
	var total int64
	for _, o := range r.Outcomes {
		total += o.Bytes
	}
	return total
}
