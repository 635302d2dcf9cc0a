// Package diag defines the diagnostic model produced by shader compiles and
// the parser that builds it from raw compiler output.
//
// # Data model
//
// Diagnostic carries a 1-based line, an optional 1-based column (zero when
// absent), a Severity and a message. A compile yields a List in parse order;
// the previous List is replaced, never merged.
//
// # Parsing
//
// Compilers report failures as one free-text string. Parser scans it with a
// regular expression that has four capture groups (line, column, severity,
// message). MetalPattern is the default and matches
// "program_source:12:5: error: ...". Severity is Warning only when the
// keyword is "warning"; everything else is Error, and Info is never produced.
//
// Parse never fails. Text without a recognizable entry becomes a single
// Error diagnostic on line 1 carrying the whole input, so callers always have
// something to show.
//
// # Scope
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt.
package diag
