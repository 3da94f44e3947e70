// Package types defines the shared vocabulary of vpxkit: typed errors with
// stable categories, the random-access byte source the container engine reads
// from, and the tagged result a streaming filter returns.
//
// Design goals:
//   - Typed errors so callers branch on intent (structural vs. not-found)
//     rather than on message text.
//   - A byte-source contract small enough to back with a mapped file, an
//     in-memory buffer, or a remote range reader.
//   - Never panic on malformed input.
//
// This package has no dependencies beyond the standard library.
package types
