// Package templating renders template files with the prompt engine. It
// gathers variable bindings from stamp info files, JSON or YAML variable files
// and explicit NAME=VALUE assignments, renders the template, and writes the
// result to a file or stdout.
//
// The Engine type holds the binding sources and expands templates via the
// Expand method. Rendering is strict: every {{ name }} placeholder must be
// bound, and nothing is written when rendering fails.
package templating
