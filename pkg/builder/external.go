package builder

import (
	"context"
	"os"
	"os/exec"
)

// Runner starts a packager process and waits for it. The process output
// goes straight to the operator and a non-zero exit comes back as the
// error, untranslated.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
