package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/app"
	"github.com/llehouerou/meeloq/internal/config"
	"github.com/llehouerou/meeloq/internal/db"
	"github.com/llehouerou/meeloq/internal/errmsg"
	"github.com/llehouerou/meeloq/internal/logging"
	"github.com/llehouerou/meeloq/internal/notify"
	"github.com/llehouerou/meeloq/internal/playlists"
	"github.com/llehouerou/meeloq/internal/queue"
	"github.com/llehouerou/meeloq/internal/remote"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "configuration file (default: ~/.config/meeloq/config.toml, ./config.toml)")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if !cfg.HasServer() {
		return errors.New("no Meelo server configured: set [server] url in config.toml")
	}

	logger, err := logging.New(cfg.GetLogConfig())
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() { _ = logger.Sync() }()

	server := cfg.GetServerConfig()
	client := remote.NewClient(server.URL, server.Token,
		remote.WithPageSize(server.PageSize),
		remote.WithTimeout(server.Timeout()),
		remote.WithCache(cfg.GetCachePages()),
		remote.WithLogger(logger.Named("remote")),
	)

	qc := cfg.GetQueueConfig()
	q := queue.New(queue.NewStore(),
		queue.WithPageSize(server.PageSize),
		queue.WithPrefetchThreshold(*qc.PrefetchThreshold),
		queue.WithHistorySize(qc.HistorySize),
		queue.WithLogger(logger.Named("queue")),
	)
	defer q.Close()

	opts := app.Options{
		Catalog:  songCatalog{client: client},
		Rollback: cfg.Reorder.RollbackOnFailure,
		Logger:   logger.Named("app"),
	}

	if cfg.Playlist.ID != 0 {
		playlist, database, err := openPlaylist(cfg, client, logger)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}
		opts.Playlist = playlist
	}

	if cfg.Notify.Enabled {
		notifier, err := notify.New()
		if err != nil {
			logger.Warn("desktop notifications unavailable", zap.Error(err))
		} else {
			opts.Announcer = notify.NewAnnouncer(notifier, logger.Named("notify"))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting", zap.String("server", server.URL), zap.Int("page_size", server.PageSize))
	_, err = tea.NewProgram(app.New(ctx, q, opts), tea.WithAltScreen()).Run()
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// openPlaylist binds the configured playlist, read from the server or from
// the local database. The database is returned so the caller can close it.
func openPlaylist(cfg *config.Config, client *remote.Client, logger *zap.Logger) (*app.Playlist, *sql.DB, error) {
	id := cfg.Playlist.ID
	if !cfg.Playlist.Local {
		return &app.Playlist{ID: id, Source: client.PlaylistEntries(id), Persister: client}, nil, nil
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, errors.New(errmsg.Format(errmsg.OpDBOpen, err))
	}
	store := playlists.New(database, logger.Named("playlists"))
	if _, err := store.Get(context.Background(), id); err != nil {
		database.Close()
		return nil, nil, errors.New(errmsg.FormatWith(errmsg.OpPlaylistLoad, fmt.Sprint(id), err))
	}
	return &app.Playlist{ID: id, Source: store.Source(id), Persister: store}, database, nil
}

// songCatalog serves the song queries of the front end from the server.
type songCatalog struct {
	client *remote.Client
}

func (c songCatalog) Songs(seed *int64) queue.Source {
	return c.client.Songs(remote.SongFilter{Random: seed})
}
