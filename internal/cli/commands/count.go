package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/velocity/internal/cli/ui"
	"github.com/crimson-sun/velocity/internal/connector"
	"github.com/crimson-sun/velocity/internal/observability"
	"github.com/crimson-sun/velocity/internal/pipeline"
)

type countOptions struct {
	source   string
	input    string
	output   string
	format   string
	board    string
	finished string
	reject   string
	since    string
	before   string
	asOf     string
	limit    int
	fillGaps bool
	dated    bool
	dedup    bool
}

func newCountCmd(st *state) *cobra.Command {
	o := &countOptions{}
	cmd := &cobra.Command{
		Use:   "count",
		Short: "count created, removed and finished cards per day",
		Long: `Reads every action on the board, classifies each one as create, remove,
finish or ignore, and writes the running totals per date.

Actions on a rejected list are dropped before classification. A card counts
as finished when it is closed or moved while on one of the finished lists.`,
		Example: `  # Count the board named in keys.sh
  $ velocity count

  # Render an aligned table in the terminal
  $ velocity count --format table

  # Write counts_YYYYMMDD.csv and carry totals through today
  $ velocity count --output file --format csv --dated --as-of $(date +%F)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.apply(cmd, st)
			if err := st.cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			st.initLogging()
			return runCount(cmd, st)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.source, "source", "", "action source: "+strings.Join(connector.Providers(), ", "))
	f.StringVarP(&o.input, "input", "i", "", "action file for --source file (- for stdin)")
	f.StringVarP(&o.output, "output", "o", "", "comma-separated outputs: stdout, file, postgres, webhook")
	f.StringVarP(&o.format, "format", "f", "", "table format: tsv, csv, table")
	f.StringVar(&o.board, "board", "", "board name prefix")
	f.StringVar(&o.finished, "finished", "", "pipe-separated finished list names")
	f.StringVar(&o.reject, "reject", "", "pipe-separated rejected list names")
	f.StringVar(&o.since, "since", "", "only actions after this RFC 3339 time")
	f.StringVar(&o.before, "before", "", "only actions before this RFC 3339 time")
	f.StringVar(&o.asOf, "as-of", "", "fill dates through YYYY-MM-DD")
	f.IntVar(&o.limit, "limit", 0, "actions per page for --source trello (max 1000)")
	f.BoolVar(&o.fillGaps, "fill-gaps", false, "emit a row for every date, repeating totals")
	f.BoolVar(&o.dated, "dated", false, "insert _YYYYMMDD into the output file name")
	f.BoolVar(&o.dedup, "dedup", false, "drop documents whose action id was already read")
	return cmd
}

// apply overrides configuration with the flags that were set.
func (o *countOptions) apply(cmd *cobra.Command, st *state) {
	cfg := st.cfg
	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("source", &cfg.Source.Provider, o.source)
	set("input", &cfg.Source.Input, o.input)
	set("output", &cfg.Output.Kind, o.output)
	set("format", &cfg.Output.Format, o.format)
	set("board", &cfg.Board.Name, o.board)
	set("finished", &cfg.Board.Finished, o.finished)
	set("reject", &cfg.Board.Reject, o.reject)
	set("since", &cfg.Source.Since, o.since)
	set("before", &cfg.Source.Before, o.before)
	set("as-of", &cfg.Engine.AsOf, o.asOf)
	if f.Changed("limit") {
		cfg.Source.PageSize = o.limit
	}
	if f.Changed("fill-gaps") {
		cfg.Engine.FillGaps = o.fillGaps
	}
	if f.Changed("dated") {
		cfg.Output.Dated = o.dated
	}
	if f.Changed("dedup") {
		cfg.Engine.Dedup = o.dedup
	}
}

func runCount(cmd *cobra.Command, st *state) error {
	ctx := cmd.Context()
	cfg := st.cfg
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	if cfg.Metrics.Addr != "" {
		stop, err := serveMetrics(cfg.Metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctor, err := connector.Get(cfg.Source.Provider)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	aggOpts, err := aggregateOptions(cfg)
	if err != nil {
		return err
	}
	out, closers, err := buildOutput(ctx, cfg, cmd.OutOrStdout(), runID, time.Now(), logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	p := pipeline.New(ctor(), eng, out, pipeline.WithLogger(logger))
	sum, err := p.Count(ctx, connectorConfig(cfg), queryParams(cfg), aggOpts...)
	if cerr := p.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if sum.Duplicates > 0 {
		ui.PrintWarning("dropped %d duplicate actions", sum.Duplicates)
	}
	if sum.Rows == 0 {
		ui.PrintWarning("no countable actions in %d read", sum.Actions)
		return nil
	}
	ui.PrintSuccess("counted %d actions into %d rows through %s", sum.Actions, sum.Rows, sum.LastDate)
	return nil
}

// serveMetrics exposes /metrics on addr until stop is called.
func serveMetrics(addr string, logger *slog.Logger) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
