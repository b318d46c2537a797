// comicshelf is the local client for browsing a webcomic backend:
// it serves the JSON API for the web UI and offers one-shot commands
// for listing, searching, and reading statistics.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"comicshelf/internal/api"
	"comicshelf/internal/api/cached"
	"comicshelf/internal/api/fallback"
	"comicshelf/internal/api/mock"
	"comicshelf/internal/api/rest"
	"comicshelf/internal/config"
	"comicshelf/internal/fetcher"
	"comicshelf/internal/logger"
	"comicshelf/internal/metrics"
	"comicshelf/internal/models"
	"comicshelf/internal/server"
	"comicshelf/internal/stats"
	"comicshelf/internal/store"
)

var version = "dev" // Set during build

func main() {
	// A missing .env file is fine; real env vars still apply
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "comicshelf",
		Usage:   "webcomic reading client",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "serve the built-in catalog instead of a real backend",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			comicsCommand(),
			searchCommand(),
			statsCommand(),
			loginCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads config, initializes logging, and builds the provider
// stack shared by every command.
func setup(c *cli.Context) (*config.Config, api.Provider, *store.Store, *prometheus.Registry, metrics.Collector, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if c.Bool("mock") {
		cfg.API.UseMock = true
	}

	logger.Setup(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     logger.ParseLogFormat(cfg.Logging.Format),
		Output:     os.Stdout,
		TimeFormat: time.RFC3339,
	})
	log := logger.Get()

	st, err := store.Open(cfg.Paths.DatabaseFile, log)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(registry)

	var base api.Provider
	if cfg.API.UseMock {
		log.Info("Using the built-in mock catalog", nil)
		base = mock.NewProvider(cfg.API.MockLatency, log)
	} else {
		base = rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout, st)
		if cfg.API.FallbackToMock {
			base = fallback.New(base, mock.NewProvider(0, log), log).WithMetrics(collector)
		}
	}

	provider := cached.New(base, cached.TTLs{
		Featured: cfg.Cache.FeaturedTTL,
		Latest:   cfg.Cache.LatestTTL,
		Genres:   cfg.Cache.GenresTTL,
		Listing:  cfg.Cache.ListingTTL,
	}, log).WithMetrics(collector)

	return cfg, provider, st, registry, collector, nil
}

// run executes a provider operation through the fetcher so one-shot
// commands get the same retry and metrics behavior as the server.
func run[T any](c *cli.Context, cfg *config.Config, op string, collector metrics.Collector, producer fetcher.Producer[T]) (T, error) {
	opts := fetcher.Options{
		RetryLimit: cfg.Fetcher.RetryLimit,
		RetryDelay: cfg.Fetcher.RetryDelay,
		Retryable:  api.IsRetryable,
		Operation:  op,
		Metrics:    collector,
	}
	if cfg.Fetcher.NoRetry {
		opts.RetryLimit = 0
	}

	f := fetcher.New(producer, opts)
	defer f.Close()
	f.Fetch(c.Context)

	snap, err := f.Wait(c.Context)
	if err != nil {
		return snap.Data, err
	}
	if snap.Err != "" {
		return snap.Data, fmt.Errorf("%s", snap.Err)
	}
	return snap.Data, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API for the web UI",
		Action: func(c *cli.Context) error {
			cfg, provider, st, registry, _, err := setup(c)
			if err != nil {
				return err
			}
			defer st.Close()
			log := logger.Get()

			srv := server.New(cfg.Server.Port, provider, registry, log)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info("Shutting down", map[string]interface{}{
					"signal": sig.String(),
				})
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func comicsCommand() *cli.Command {
	return &cli.Command{
		Name:  "comics",
		Usage: "list comics with filters",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "limit", Value: api.DefaultPageSize},
			&cli.StringFlag{Name: "sort", Value: api.SortLatest, Usage: "latest, a-z, or z-a"},
			&cli.StringSliceFlag{Name: "genre", Usage: "repeat to require several genres"},
			&cli.StringFlag{Name: "status", Usage: "ongoing, completed, hiatus, or all"},
		},
		Action: func(c *cli.Context) error {
			cfg, provider, st, _, collector, err := setup(c)
			if err != nil {
				return err
			}
			defer st.Close()

			page, err := run(c, cfg, "ListComics", collector, func(ctx context.Context) (*models.ComicPage, error) {
				return provider.ListComics(ctx, api.ListParams{
					Page:   c.Int("page"),
					Limit:  c.Int("limit"),
					Sort:   c.String("sort"),
					Genres: c.StringSlice("genre"),
					Status: c.String("status"),
				})
			})
			if err != nil {
				return err
			}

			for _, comic := range page.Comics {
				fmt.Printf("%-6s %-50s %-10s %s\n", comic.ID, comic.Title, comic.Status, comic.LatestChapter)
			}
			fmt.Printf("page %d of %d (%d comics)\n", c.Int("page"), page.TotalPages, page.Total)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search comics by title or genre",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("search requires a query argument")
			}
			cfg, provider, st, _, collector, err := setup(c)
			if err != nil {
				return err
			}
			defer st.Close()

			comics, err := run(c, cfg, "SearchComics", collector, func(ctx context.Context) ([]models.Comic, error) {
				return provider.SearchComics(ctx, c.Args().First())
			})
			if err != nil {
				return err
			}

			if len(comics) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, comic := range comics {
				fmt.Printf("%-6s %s\n", comic.ID, comic.Title)
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "derive reading statistics from history",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "offline", Usage: "use the locally mirrored history only"},
		},
		Action: func(c *cli.Context) error {
			cfg, provider, st, _, collector, err := setup(c)
			if err != nil {
				return err
			}
			defer st.Close()

			var history []models.ReadingHistoryItem
			if c.Bool("offline") {
				history, err = st.History()
				if err != nil {
					return err
				}
			} else {
				history, err = run(c, cfg, "ReadingHistory", collector, func(ctx context.Context) ([]models.ReadingHistoryItem, error) {
					return provider.ReadingHistory(ctx)
				})
				if err != nil {
					return err
				}
				if err := st.ReplaceHistory(history); err != nil {
					logger.Get().Warn("Failed to mirror history locally", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}

			summary := stats.Summarize(history, time.Now())
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "authenticate against the backend and persist the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"COMICSHELF_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			cfg, provider, st, _, collector, err := setup(c)
			if err != nil {
				return err
			}
			defer st.Close()

			session, err := run(c, cfg, "Login", collector, func(ctx context.Context) (*models.AuthSession, error) {
				return provider.Login(ctx, c.String("email"), c.String("password"))
			})
			if err != nil {
				return err
			}

			// The REST client persists through the store; mock sessions
			// are stored here so later commands see a logged-in state.
			if cfg.API.UseMock {
				if err := st.SetToken(session.Token); err != nil {
					return err
				}
			}

			fmt.Printf("logged in as %s\n", session.User.Username)
			return nil
		},
	}
}
