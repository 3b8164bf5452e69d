package gate

// Explainer renders the audit text of a gate decision.
type Explainer interface {
	// Signal returns the explanation of one signal of r.
	Signal(r Result, s Signal) string
	// Explanation returns the combined explanation block of r. It is called
	// after every signal narrative has been filled in.
	Explanation(r Result) string
}

// Explain fills in the per-signal narratives and the combined explanation.
func (r *Result) Explain(e Explainer) {
	for _, s := range r.Signals() {
		s.Narrative = e.Signal(*r, *s)
	}
	r.Explanation = e.Explanation(*r)
}

// ExplainAll explains every result in place.
func ExplainAll(results []Result, e Explainer) {
	for i := range results {
		results[i].Explain(e)
	}
}
