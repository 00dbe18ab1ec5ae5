// Command queuedump plays a Meelo query through the queue engine without a
// terminal UI and prints how the queue grows.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/config"
	"github.com/llehouerou/meeloq/internal/db"
	"github.com/llehouerou/meeloq/internal/logging"
	"github.com/llehouerou/meeloq/internal/playlists"
	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/remote"
)

var (
	configPath string
	pages      int
	shuffle    int64
	playlistID int64
	local      bool
	walk       bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "queuedump",
	Short: "Play a query through the queue engine and print the queue",
	Long: `Plays all songs (or a playlist) from the configured Meelo server through
the queue engine and prints the queue after every page.

With --walk the queue is played by skipping through it, so pages are loaded
by prefetch the way they are during playback.`,
	SilenceUsage: true,
	RunE:         runDump,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file")
	rootCmd.Flags().IntVarP(&pages, "pages", "n", 3, "number of pages to load")
	rootCmd.Flags().Int64Var(&shuffle, "shuffle", 0, "shuffle songs on the server with this seed")
	rootCmd.Flags().Int64VarP(&playlistID, "playlist", "p", 0, "play this playlist instead of all songs")
	rootCmd.Flags().BoolVar(&local, "local", false, "read the playlist from the local database")
	rootCmd.Flags().BoolVarP(&walk, "walk", "w", false, "skip through the queue and let prefetch load pages")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print snapshots as JSON lines")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger, err := logging.New(cfg.GetLogConfig())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server := cfg.GetServerConfig()
	client := remote.NewClient(server.URL, server.Token,
		remote.WithPageSize(server.PageSize),
		remote.WithTimeout(server.Timeout()),
		remote.WithLogger(logger.Named("remote")),
	)

	src, closeSrc, err := source(cfg, client, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	qc := cfg.GetQueueConfig()
	q := queue.New(queue.NewStore(),
		queue.WithPageSize(server.PageSize),
		queue.WithPrefetchThreshold(*qc.PrefetchThreshold),
		queue.WithLogger(logger.Named("queue")),
	)
	defer q.Close()

	opts := dumpOptions{pages: pages, walk: walk, json: jsonOutput}
	return dump(cmd.Context(), q, src, opts, cmd.OutOrStdout())
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// source returns the query selected by the flags and a function releasing
// what it holds.
func source(cfg *config.Config, client *remote.Client, logger *zap.Logger) (queue.Source, func(), error) {
	noop := func() {}
	switch {
	case playlistID != 0 && local:
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open database: %w", err)
		}
		store := playlists.New(database, logger.Named("playlists"))
		return store.Source(playlistID), func() { database.Close() }, nil
	case !cfg.HasServer():
		return nil, noop, errors.New("no Meelo server configured")
	case playlistID != 0:
		return client.PlaylistEntries(playlistID), noop, nil
	case shuffle != 0:
		return client.Songs(remote.SongFilter{Random: &shuffle}), noop, nil
	default:
		return client.Songs(remote.SongFilter{}), noop, nil
	}
}

type dumpOptions struct {
	pages int
	walk  bool
	json  bool
}

// snapshot is one printed line.
type snapshot struct {
	Step    string `json:"step"`
	Entries int    `json:"entries"`
	Cursor  int    `json:"cursor"`
	More    bool   `json:"more"`
	AfterID *int64 `json:"afterId,omitempty"`
	Current string `json:"current,omitempty"`
}

func newSnapshot(step string, s queue.State) snapshot {
	snap := snapshot{Step: step, Entries: s.Len(), Cursor: s.Cursor, More: s.Infinite()}
	if s.Continuation != nil {
		id := s.Continuation.AfterID
		snap.AfterID = &id
	}
	if e := s.Current(); e != nil {
		snap.Current = e.Artist.Name + " - " + e.Track.Name
	}
	return snap
}

func (s snapshot) String() string {
	more := ""
	if s.More {
		more = fmt.Sprintf(", more after %d", *s.AfterID)
	}
	line := fmt.Sprintf("%-8s %4d entries, cursor %d%s", s.Step, s.Entries, s.Cursor, more)
	if s.Current != "" {
		line += "  " + s.Current
	}
	return line
}

// dump plays src on q and prints a snapshot after every loaded page, until
// opts.pages pages are loaded or the query is exhausted.
func dump(ctx context.Context, q *queue.Queue, src queue.Source, opts dumpOptions, w io.Writer) error {
	emit := func(step string, s queue.State) error {
		snap := newSnapshot(step, s)
		if opts.json {
			return json.NewEncoder(w).Encode(snap)
		}
		_, err := fmt.Fprintln(w, snap)
		return err
	}

	if err := q.PlayFromRemoteQuery(ctx, src); err != nil {
		return err
	}
	if err := emit("page 1", q.State()); err != nil {
		return err
	}

	if opts.walk {
		return walkQueue(ctx, q, opts.pages, emit)
	}
	for page := 2; page <= opts.pages && q.State().Infinite(); page++ {
		if err := q.LoadNextPage(ctx); err != nil {
			return err
		}
		if err := emit(fmt.Sprintf("page %d", page), q.State()); err != nil {
			return err
		}
	}
	return nil
}

// walkQueue skips through the queue one entry at a time. Pages arrive
// through the prefetch started by Skip; a snapshot is printed whenever the
// queue grew.
func walkQueue(ctx context.Context, q *queue.Queue, pages int, emit func(string, queue.State) error) error {
	sub := q.Store().Subscribe()
	loaded := 1
	for loaded < pages {
		before := q.State().Len()
		q.Skip()
		if err := waitPrefetch(ctx, q, sub); err != nil {
			return err
		}
		s := q.State()
		if s.Len() > before {
			loaded++
			if err := emit(fmt.Sprintf("skip %d", max(s.Cursor, 0)), s); err != nil {
				return err
			}
		}
		if s.Cursor < 0 && !s.Infinite() {
			return nil
		}
	}
	return nil
}

const prefetchPoll = 10 * time.Millisecond

// waitPrefetch waits until no page fetch is in flight. A failed prefetch is
// reported by the store's error events.
func waitPrefetch(ctx context.Context, q *queue.Queue, sub *queue.Subscription) error {
	ticker := time.NewTicker(prefetchPoll)
	defer ticker.Stop()
	for {
		select {
		case e := <-sub.Errors:
			return fmt.Errorf("%s: %w", e.Operation, e.Err)
		default:
		}
		if !q.Fetching() {
			return nil
		}
		select {
		case e := <-sub.Errors:
			return fmt.Errorf("%s: %w", e.Operation, e.Err)
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
