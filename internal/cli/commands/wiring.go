package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/crimson-sun/velocity/internal/config"
	"github.com/crimson-sun/velocity/internal/connector"
	"github.com/crimson-sun/velocity/internal/engine"
	"github.com/crimson-sun/velocity/internal/engine/aggregate"
	"github.com/crimson-sun/velocity/internal/engine/classifier"
	"github.com/crimson-sun/velocity/internal/engine/rules"
	"github.com/crimson-sun/velocity/internal/model"
	"github.com/crimson-sun/velocity/internal/output"
	"github.com/crimson-sun/velocity/internal/output/async"
	"github.com/crimson-sun/velocity/internal/output/file"
	"github.com/crimson-sun/velocity/internal/output/multi"
	"github.com/crimson-sun/velocity/internal/output/postgres"
	"github.com/crimson-sun/velocity/internal/output/stdout"
	"github.com/crimson-sun/velocity/internal/output/webhook"

	// Register connector implementations.
	_ "github.com/crimson-sun/velocity/internal/connector/file"
	_ "github.com/crimson-sun/velocity/internal/connector/kafka"
	_ "github.com/crimson-sun/velocity/internal/connector/trello"
)

// connectorConfig maps configuration onto the selected source.
func connectorConfig(cfg *config.Config) connector.ConnectorConfig {
	switch cfg.Source.Provider {
	case "file":
		return connector.ConnectorConfig{Provider: "file", Endpoint: cfg.Source.Input}
	case "kafka":
		return connector.ConnectorConfig{
			Provider: "kafka",
			Endpoint: cfg.Source.Brokers,
			Extra: map[string]string{
				"topic":        cfg.Source.Topic,
				"partition":    strconv.Itoa(cfg.Source.Partition),
				"idle_timeout": cfg.Source.IdleTimeout.String(),
			},
		}
	default:
		return trelloConfig(cfg)
	}
}

func trelloConfig(cfg *config.Config) connector.ConnectorConfig {
	return connector.ConnectorConfig{
		Provider: "trello",
		APIKey:   cfg.Trello.APIKey,
		Token:    cfg.Trello.Token,
		Endpoint: cfg.Trello.Endpoint,
		Extra:    map[string]string{"board_name": cfg.Board.Name},
	}
}

func requireTrello(cfg *config.Config) error {
	if cfg.Trello.APIKey == "" || cfg.Trello.Token == "" {
		return fmt.Errorf("TRELLO_API_KEY and OAUTH_TOKEN are required")
	}
	return nil
}

// classificationRules returns the standard rule table bound to the
// configured finished lists.
func classificationRules(cfg *config.Config) []rules.Rule {
	return rules.DefaultRules(cfg.FinishedLists())
}

func queryParams(cfg *config.Config) connector.QueryParams {
	return connector.QueryParams{
		Since:  cfg.Source.SinceTime(),
		Before: cfg.Source.BeforeTime(),
		Limit:  cfg.Source.PageSize,
		Kinds:  rules.QueryKinds(classificationRules(cfg)),
	}
}

func newEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	pass, err := rules.NewPassFilter(rules.DefaultPassRules(cfg.RejectedLists()))
	if err != nil {
		return nil, err
	}
	cls, err := classifier.New(classificationRules(cfg))
	if err != nil {
		return nil, err
	}
	return engine.New(pass, cls, engine.WithLogger(logger), engine.WithDedup(cfg.Engine.Dedup)), nil
}

func aggregateOptions(cfg *config.Config) ([]aggregate.Option, error) {
	var opts []aggregate.Option
	if cfg.Engine.AsOf != "" {
		asOf, err := model.ParseDate(cfg.Engine.AsOf)
		if err != nil {
			return nil, err
		}
		return append(opts, aggregate.WithGapFillThrough(asOf)), nil
	}
	if cfg.Engine.FillGaps {
		opts = append(opts, aggregate.WithGapFill())
	}
	return opts, nil
}

// buildOutput builds the configured destinations. closers release resources
// the outputs do not own, and run after the outputs are closed.
func buildOutput(ctx context.Context, cfg *config.Config, stdoutW io.Writer, runID string, now time.Time, logger *slog.Logger) (output.Output, []func(), error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, nil, err
	}

	var (
		outs    []output.Output
		closers []func()
	)
	fail := func(err error) (output.Output, []func(), error) {
		for _, o := range outs {
			o.Close()
		}
		for _, c := range closers {
			c()
		}
		return nil, nil, err
	}
	background := func(o output.Output) output.Output {
		if !cfg.Output.Async {
			return o
		}
		return async.New(o, async.WithOnError(func(err error) {
			logger.Warn("output write failed", "error", err)
		}))
	}

	for _, kind := range cfg.Outputs() {
		switch kind {
		case "stdout":
			outs = append(outs, output.Counted(kind, stdout.NewWriter(stdoutW, format)))
		case "file":
			path := cfg.Output.Path
			if cfg.Output.Dated {
				path = file.DatedPath(path, now)
			}
			f, err := file.New(path, file.WithFormat(format))
			if err != nil {
				return fail(err)
			}
			logger.Info("writing table", "path", f.Path())
			outs = append(outs, background(output.Counted(kind, f)))
		case "postgres":
			pool, err := postgres.Connect(ctx, cfg.Output.DSN)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, pool.Close)
			pg := postgres.New(pool, cfg.Board.Name, runID)
			if err := pg.EnsureSchema(ctx); err != nil {
				return fail(err)
			}
			outs = append(outs, background(output.Counted(kind, pg)))
		case "webhook":
			wh := webhook.New(cfg.Output.WebhookURL,
				webhook.WithBoard(cfg.Board.Name),
				webhook.WithTimeout(cfg.Output.Timeout),
				webhook.WithOnError(func(err error) {
					logger.Warn("webhook delivery failed", "error", err)
				}),
			)
			outs = append(outs, background(output.Counted(kind, wh)))
		default:
			return fail(fmt.Errorf("unknown output %q", kind))
		}
	}

	if len(outs) == 1 {
		return outs[0], closers, nil
	}
	return multi.New(outs...), closers, nil
}
