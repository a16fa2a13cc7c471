package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// execCmd runs argv in dir without a shell, streaming output to out and errOut.
func execCmd(log *zap.Logger, dir string, argv []string, out, errOut io.Writer) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty cmd")
	}
	log.Debug("exec", zap.String("dir", dir), zap.Strings("argv", argv))

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv comes from monows.yaml
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = out
	cmd.Stderr = errOut
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", strings.Join(argv, " "), err)
	}
	return nil
}
