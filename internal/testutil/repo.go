package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CreatePackageRepo creates a bare git repository whose single commit on main
// holds a package.json with the given content. Returns the path to the bare repo.
func CreatePackageRepo(t *testing.T, packageJSON string) string {
	t.Helper()
	return createRepo(t, map[string]string{
		"package.json": packageJSON,
		"README.md":    "# test\n",
	})
}

// CreatePackageRepoWithBranch is like CreatePackageRepo but also adds a
// branch whose package.json is branchJSON. HEAD stays on main.
func CreatePackageRepoWithBranch(t *testing.T, packageJSON, branch, branchJSON string) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")
	work := filepath.Join(dir, "work")

	initWork(t, dir, work)
	writeFiles(t, work, map[string]string{"package.json": packageJSON})
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "initial commit")

	Run(t, work, "git", "checkout", "-b", branch)
	writeFiles(t, work, map[string]string{"package.json": branchJSON})
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "branch commit")
	Run(t, work, "git", "checkout", "main")

	Run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

func createRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")
	work := filepath.Join(dir, "work")

	initWork(t, dir, work)
	writeFiles(t, work, files)
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "initial commit")

	Run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

func initWork(t *testing.T, dir, work string) {
	t.Helper()
	Run(t, dir, "git", "init", "-b", "main", work)
	Run(t, work, "git", "config", "user.email", "test@example.com")
	Run(t, work, "git", "config", "user.name", "Test")
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil { //nolint:gosec // test dir
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil { //nolint:gosec // test file
			t.Fatal(err)
		}
	}
}

// WritePackage writes <dir>/<name>/package.json and returns its path.
func WritePackage(t *testing.T, dir, name, packageJSON string) string {
	t.Helper()
	writeFiles(t, filepath.Join(dir, name), map[string]string{"package.json": packageJSON})
	return filepath.Join(dir, name, "package.json")
}

// Run executes a command in dir and fails the test on error.
func Run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}
