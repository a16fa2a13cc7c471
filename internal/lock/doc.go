// Package lock handles parsing and writing of monows.lock.yaml files.
// Lock files record the commit each package repository was cloned at and
// the dependency versions hoisted to the workspace root by the last setup.
package lock
