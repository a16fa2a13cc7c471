// Package workspace ties the monows.yaml config and the lock file to the
// directory layout of a workspace. Context resolves package paths, and
// Context.Setup plans the rewrite of every package.json in memory.
package workspace
