// Package version models npm-style dependency ranges as they appear in
// package.json files. Only the subset used by the workspace tooling is
// understood: exact versions, caret and tilde ranges, x-ranges and the
// wildcard, each optionally followed by a "-" appendix. Versions are
// immutable values with a total order that ranks looser ranges above
// narrower ones, so that folding with Max keeps the constraint that
// subsumes the others.
package version
