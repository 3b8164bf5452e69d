// Package narrative renders human-readable text for pipeline results.
//
// It is a pure formatting layer: every function takes structured results
// and returns strings. No scorer imports this package; the pipeline attaches
// narratives after all numbers are final.
//
// [Gate] implements [gate.Explainer]. The Fill* helpers set the Narrative
// field of each entry in a result list in place.
package narrative
