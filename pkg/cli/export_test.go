package cli

import (
	"context"
	"io"
)

// RunWithWriter runs the app printing command output to w
func RunWithWriter(ctx context.Context, args []string, version string, w io.Writer) error {
	return run(ctx, args, version, w)
}
