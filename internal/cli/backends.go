package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/config"
	"github.com/roach88/bookkeeper/internal/domain"
	"github.com/roach88/bookkeeper/internal/engine"
	"github.com/roach88/bookkeeper/internal/redisq"
	"github.com/roach88/bookkeeper/internal/store"
)

// reviewQueue is a review sink that can also be read back.
type reviewQueue interface {
	engine.ReviewSink
	ListReviews(ctx context.Context, limit int) ([]domain.ReviewEntry, error)
	CountReviews(ctx context.Context) (int, error)
}

// openStore opens the configured SQLite database, creating and migrating
// it if needed.
func openStore(opts *RootOptions) (*store.Store, error) {
	path := opts.Config.DBPath
	slog.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// closeStore closes st, logging rather than returning the error.
func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// openReviewQueue returns the configured review sink. SQLite reviews live
// in st; Redis reviews live in their own stream and need closing.
func openReviewQueue(ctx context.Context, opts *RootOptions, st *store.Store) (reviewQueue, func(), error) {
	if opts.Config.ReviewSink != config.SinkRedis {
		return st, func() {}, nil
	}

	slog.Debug("connecting review sink", "addr", opts.Config.RedisAddr, "stream", opts.Config.RedisStream)
	sink, err := redisq.Dial(ctx, opts.Config.RedisAddr, opts.Config.RedisStream)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "review sink unavailable", err)
	}
	return sink, func() {
		if err := sink.Close(); err != nil {
			slog.Error("error closing review sink", "error", err)
		}
	}, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
