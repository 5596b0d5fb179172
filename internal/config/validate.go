package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/crimson-sun/velocity/internal/connector"
)

var (
	outputs = []string{"stdout", "file", "postgres", "webhook"}
	formats = []string{"tsv", "csv", "table"}
)

// Validate checks that the selected source and outputs have what they
// need. It must be called after any overrides; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.validateOutput(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.Engine.AsOf != "" {
		if _, err := time.Parse(time.DateOnly, c.Engine.AsOf); err != nil {
			return fmt.Errorf("engine.as_of must be YYYY-MM-DD (got %q)", c.Engine.AsOf)
		}
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}
	return nil
}

func (c *Config) validateSource() error {
	s := c.Source
	if sources := connector.Providers(); !slices.Contains(sources, s.Provider) {
		return fmt.Errorf("provider must be one of %v (got %q)", sources, s.Provider)
	}
	switch s.Provider {
	case "trello":
		if c.Trello.APIKey == "" || c.Trello.Token == "" {
			return fmt.Errorf("trello requires TRELLO_API_KEY and OAUTH_TOKEN")
		}
		if c.Board.Name == "" {
			return fmt.Errorf("trello requires board_name")
		}
		if s.PageSize < 1 || s.PageSize > 1000 {
			return fmt.Errorf("page_size must be in 1..1000 (got %d)", s.PageSize)
		}
	case "file":
		if s.Input == "" {
			return fmt.Errorf("file requires input")
		}
	case "kafka":
		if s.Brokers == "" || s.Topic == "" {
			return fmt.Errorf("kafka requires brokers and topic")
		}
		if s.IdleTimeout <= 0 {
			return fmt.Errorf("idle_timeout must be > 0 (got %v)", s.IdleTimeout)
		}
	}
	for _, v := range []struct{ name, value string }{{"since", s.Since}, {"before", s.Before}} {
		if v.value == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, v.value); err != nil {
			return fmt.Errorf("%s must be RFC 3339 (got %q)", v.name, v.value)
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	kinds := c.Outputs()
	if len(kinds) == 0 {
		return fmt.Errorf("at least one output kind is required")
	}
	if !slices.Contains(formats, c.Output.Format) {
		return fmt.Errorf("format must be one of %v (got %q)", formats, c.Output.Format)
	}
	for _, k := range kinds {
		switch k {
		case "stdout":
		case "file":
			if c.Output.Path == "" {
				return fmt.Errorf("file requires path")
			}
			if c.Output.Format == "table" {
				return fmt.Errorf("file cannot use the table format")
			}
		case "postgres":
			if c.Output.DSN == "" {
				return fmt.Errorf("postgres requires VELOCITY_DATABASE_DSN")
			}
			if c.Board.Name == "" {
				return fmt.Errorf("postgres requires board_name")
			}
		case "webhook":
			if c.Output.WebhookURL == "" {
				return fmt.Errorf("webhook requires VELOCITY_WEBHOOK_URL")
			}
		default:
			return fmt.Errorf("kind must be one of %v (got %q)", outputs, k)
		}
	}
	return nil
}

// SinceTime returns the parsed lower time bound, or the zero time.
func (s SourceConfig) SinceTime() time.Time { return parseTime(s.Since) }

// BeforeTime returns the parsed upper time bound, or the zero time.
func (s SourceConfig) BeforeTime() time.Time { return parseTime(s.Before) }

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}
