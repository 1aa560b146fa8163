// Package prompt renders flat text templates with {{ name }} placeholders.
//
// New scans the template text once and records every placeholder together
// with the set of distinct variable names it references. The resulting
// Template is immutable: Render may be called any number of times, from any
// number of goroutines, with different variable bindings. Render fails when a
// referenced variable has no binding or when any bound value is nil, even one
// the template does not reference. Other bindings for unreferenced names are
// ignored.
//
// Only plain substitution is supported. There are no conditionals, loops,
// filters or nested expressions.
package prompt
