package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncobase/docpage/config"
	"github.com/ncobase/docpage/document"
	"github.com/ncobase/docpage/paging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type pageOptions struct {
	pages     int
	follow    bool
	seed      int
	randomIDs bool
}

type pageLine struct {
	Page      int                 `json:"page"`
	Documents []document.Document `json:"documents"`
	HasMore   bool                `json:"has_more"`
}

type updateLine struct {
	Update int      `json:"update"`
	Count  int      `json:"count"`
	IDs    []string `json:"ids,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// NewPageCommand creates the page command
func NewPageCommand(configFile *string) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Load pages from the configured source and print them as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if opts.follow {
				cfg.Paging.ListenForUpdates = true
			}

			app, cleanup, err := initApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg.Watch(func(next *config.Config) {
				app.Logger.SetLevel(logrus.Level(next.Logger.Level))
				app.Logger.Infof(ctx, "config reloaded, log level %s", logrus.Level(next.Logger.Level))
			}, func(err error) {
				app.Logger.Warn(ctx, err)
			})

			return runPage(ctx, app, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.pages, "pages", "n", 1, "number of pages to load")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "keep printing live updates until interrupted")
	cmd.Flags().IntVar(&opts.seed, "seed", 0, "write this many sample documents before paging")
	cmd.Flags().BoolVar(&opts.randomIDs, "random-ids", false, "use random ids for sample documents")
	return cmd
}

func runPage(ctx context.Context, app *App, opts *pageOptions, out io.Writer) error {
	if opts.seed > 0 {
		if err := app.Backend.Put(ctx, generate(opts.seed, opts.randomIDs, time.Now())...); err != nil {
			return fmt.Errorf("seeding %s source: %w", app.Backend.Kind, err)
		}
	}

	p, err := paging.NewPaginator(app.Backend.Source, app.Config.Paging, paging.Documents,
		paging.WithLogger(app.Logger),
		paging.WithCollector(app.Collector),
		paging.WithErrorHandler(func(err error) {
			app.Logger.Warnf(ctx, "live update failed: %v", err)
		}),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Dispose(context.Background()); err != nil {
			app.Logger.Warnf(context.Background(), "dispose paginator: %v", err)
		}
	}()

	var results *paging.Stream[document.Document]
	if opts.follow {
		results = p.Results()
		defer results.Close()
	}

	enc := json.NewEncoder(out)
	seen := 0
	for page := 1; page <= opts.pages && p.HasMorePages(); page++ {
		items, err := p.LoadNextPage(ctx)
		if err != nil {
			return err
		}
		if len(items) < seen {
			seen = len(items)
		}
		if err := enc.Encode(pageLine{Page: page, Documents: items[seen:], HasMore: p.HasMorePages()}); err != nil {
			return err
		}
		seen = len(items)
	}

	stats := p.Stats()
	app.Logger.Debugf(ctx, "paginator %s: %d items, %d pages loaded, state %s", stats.ID, stats.Items, stats.Loaded, stats.State)
	logMetrics(ctx, app)

	if !opts.follow {
		return nil
	}
	defer logMetrics(context.WithoutCancel(ctx), app)
	return follow(ctx, results, enc)
}

// logMetrics logs the counters the paginator recorded so far.
func logMetrics(ctx context.Context, app *App) {
	m := app.Collector.Snapshot()
	app.Logger.WithContext(ctx).WithFields(map[string]any{
		"page_loads":       m.PageLoads,
		"page_load_errors": m.PageLoadErrors,
		"loads_ignored":    m.LoadsIgnored,
		"fetches":          m.Fetches,
		"fetch_errors":     m.FetchErrors,
		"batches":          m.Batches,
		"documents":        m.Documents,
		"open_subs":        m.OpenSubs,
	}).Debug("paging metrics")
}

func follow(ctx context.Context, results *paging.Stream[document.Document], enc *json.Encoder) error {
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-results.C():
			if !ok {
				return nil
			}
			line := updateLine{Update: n, Count: len(u.Items), IDs: document.IDs(u.Items)}
			if u.Err != nil {
				line.Error = u.Err.Error()
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
	}
}
