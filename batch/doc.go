// Package batch renders many prompt templates described by a YAML manifest.
//
// A manifest lists templates, either inline or as files relative to the
// manifest, with their own variables and an optional output path. Manifest
// level variables apply to every template. Run compiles every template once,
// sharing a compiled template between entries that point at the same file,
// then renders the entries concurrently with a bounded worker pool. Every
// failure is collected in the returned results; WriteReport encodes them as
// JSON.
package batch
