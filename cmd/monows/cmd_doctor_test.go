package main

import (
	"strings"
	"testing"
)

func TestRunDoctor(t *testing.T) {
	wsDir := localWorkspace(t, map[string]string{"a": lodashA}, nil)

	// node and pnpm may be missing on the test machine, so only the report is checked.
	out, _ := execute(t, "--root", wsDir, "doctor")
	for _, want := range []string{"Checking git...", "Checking pnpm...", "Workspace: cns (0 repos)", "Packages: 1 under packages", "Lock: not written yet"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDoctor_noWorkspace(t *testing.T) {
	out, _ := execute(t, "--root", t.TempDir(), "doctor")
	if !strings.Contains(out, "No workspace found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("v20.11.0\nextra"); got != "v20.11.0" {
		t.Errorf("firstLine() = %q", got)
	}
}
