package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/engine"
	"github.com/roach88/bookkeeper/internal/intake"
)

// maxClaimLine bounds one claim on the stream, body included.
const maxClaimLine = 1 << 20

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EngineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a stream of claims from stdin",
		Long: `Start the reconciliation engine and read claims from stdin, one JSON
object per line. Each outcome is written as soon as it is decided.

The engine stops when stdin is closed and every claim has been handled, or
on SIGINT/SIGTERM. Malformed lines are reported and skipped.

Example:
  tail -f inbox.jsonl | bookkeeper run --db ./books.db --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.resolve(cmd)
			return runEngine(opts, cmd)
		},
	}
	bindEngineFlags(cmd, opts)

	return cmd
}

func runEngine(opts *EngineOptions, cmd *cobra.Command) error {
	ctx, stop := withSignals(commandContext(cmd))
	defer stop()

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	sink, closeSink, err := openReviewQueue(ctx, opts.RootOptions, st)
	if err != nil {
		return err
	}
	defer closeSink()

	out := &streamWriter{f: newFormatter(cmd, opts.RootOptions)}
	runner := engine.NewRunner(opts.newEngine(st, sink), opts.Workers, out.write)

	slog.Info("engine starting", "db", opts.Config.DBPath, "workers", opts.Workers, "review_sink", opts.Config.ReviewSink)
	fmt.Fprintln(cmd.ErrOrStderr(), "Engine started. Reading claims from stdin...")

	readErr := make(chan error, 1)
	go func() {
		defer runner.Close()
		readErr <- readClaimStream(ctx, cmd.InOrStdin(), runner, out)
	}()

	// Run returns nil only after the reader has closed the runner. On
	// cancellation the reader may still be blocked on stdin, so it is not
	// waited for.
	if err := runner.Run(ctx); err != nil {
		slog.Info("engine stopped", "pending", runner.Pending(), "reason", err)
		if !errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "engine error", err)
		}
	} else if err := <-readErr; err != nil {
		return WrapExitError(ExitCommandError, "failed to read claims", err)
	}

	slog.Info("engine stopped gracefully", "accepted", out.accepted, "rejected", out.rejected, "failed", out.failed)
	if out.failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d claim(s) could not be processed", out.failed))
	}
	return nil
}

// readClaimStream submits each line of r to the runner until EOF or ctx
// ends. Invalid lines are reported and skipped.
func readClaimStream(ctx context.Context, r io.Reader, runner *engine.Runner, out *streamWriter) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxClaimLine)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		claim, err := intake.ParseClaim(line)
		if err != nil {
			out.invalid(lineNo, err)
			continue
		}
		if !runner.Submit(claim) {
			return nil
		}
	}
	return scanner.Err()
}

// streamWriter serializes outcome output from concurrent workers.
type streamWriter struct {
	mu       sync.Mutex
	f        *OutputFormatter
	accepted int
	rejected int
	failed   int
}

func (s *streamWriter) write(r engine.Result) {
	report := newClaimReport(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch report.Outcome {
	case outcomeFailed:
		s.failed++
	case "accepted":
		s.accepted++
	default:
		s.rejected++
	}

	if s.f.Format == "json" {
		// One object per line so the output can itself be streamed.
		if err := json.NewEncoder(s.f.Writer).Encode(report); err != nil {
			slog.Error("write outcome", "claim_id", report.ClaimID, "error", err)
		}
		return
	}
	fmt.Fprintln(s.f.Writer, report.Line())
}

func (s *streamWriter) invalid(lineNo int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Warn("skipping invalid claim", "line", lineNo, "error", err)
	fmt.Fprintf(s.f.GetErrWriter(), "line %d: invalid claim: %v\n", lineNo, err)
}

// withSignals derives a context that is canceled on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
