// Package errors provides structured, actionable errors for nextroute.
//
// Each error carries a stable code (e.g. "N001"), a category, and a fix
// suggestion printed by the CLI. Categories:
//   - invariant: the upstream build produced an inconsistent output graph;
//     always fatal, never retried
//   - config: problems with nextroute.json
//   - packaging: reading build outputs or writing deployment artifacts failed
//   - upload: static asset offloading failed
//   - cli: command usage errors
//
// # Usage
//
//	err := errors.New("N002").
//	    WithDetail("page %s prerendered %s but no function output exists", page, path)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR N002: Prerendered variant is missing its parent function output
//	//
//	//   page /posts/[slug] prerendered /posts/a but no function output exists
//	//
//	//   Hint: Re-run the framework build; the output graph is inconsistent.
package errors
