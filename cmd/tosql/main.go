// Command tosql loads spreadsheets and delimited text files into a SQL
// database, creating one table per worksheet or file with column types
// inferred from the data.
//
// Usage:
//
//	tosql [flags] FILE...
//	tosql --noop Sales.xlsx
//	tosql --storage sqlite --database sales orders.csv returns.tsv
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tosql/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// runMain executes the root command and returns the process exit code. A
// failure is logged as "ERROR: ..." in the format the run configured; errors
// raised before logging is configured use the text handler on stderr.
func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	_ = logging.Setup(stderr, false, "text")

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("ERROR: " + err.Error())
		return 1
	}
	return 0
}
