// Package reconcile merges the dependency maps of many package manifests
// into one workspace. It tallies every dependency name across manifests,
// keeps the highest range per name, hoists dev dependencies shared by every
// manifest to the workspace root and rewrites the rest to agree on one
// version. Reconcile is a pure function of its inputs: it performs no I/O
// and either returns a complete Result or an error and nothing else.
package reconcile
