// Package config loads and validates monows.yaml, the workspace
// configuration listing the package repositories and the merge policy.
package config
