package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"subdl/internal/apperrors"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failed run to the tool's exit-code policy: 2 when the run
// completed but found nothing to save, 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, apperrors.ErrNothingToSave) {
		return 2
	}
	return 1
}
