// Package git wraps the git CLI commands monows needs to materialize package
// repositories: clone, commit inspection and detaching a checkout from its
// history.
package git
