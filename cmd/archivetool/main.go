// archivetool inspects archives of serialized records and moves their payloads to external storage.
//
// Usage:
//
//	archivetool [flags] dump <archive>
//	archivetool [flags] spill [--out <archive>] <archive>
//	archivetool [flags] verify <archive>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/runtime/workerpool"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "archivetool: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cmd, err := parseCommandLine(args)
	if err != nil {
		return err
	}

	container, err := buildContainer(cmd.params, out)
	if err != nil {
		return err
	}

	return container.Invoke(func(t *tool, backend *storeBackend, pool *workerpool.WorkerPool) (err error) {
		defer pool.Shutdown()
		defer func() {
			if closeErr := backend.Close(); closeErr != nil {
				err = ierrors.Join(err, ierrors.Wrap(closeErr, "failed to close store"))
			}
		}()

		return t.execute(ctx, cmd)
	})
}
