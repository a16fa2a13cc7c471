// Package pkgjson reads and rewrites package.json files. Edits touch only the
// dependency blocks; every other key keeps its value and position.
package pkgjson
