// Package config loads velocity settings from an optional YAML file, the
// environment, and a shell-style keys file.
package config

import (
	"strings"
	"time"
)

// Config holds all velocity configuration.
type Config struct {
	Trello  TrelloConfig  `yaml:"trello"`
	Board   BoardConfig   `yaml:"board"`
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Engine  EngineConfig  `yaml:"engine"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// TrelloConfig holds board-service credentials. The env names match the
// keys file written during onboarding.
type TrelloConfig struct {
	APIKey      string `yaml:"api_key"      env:"TRELLO_API_KEY"`
	APISecret   string `yaml:"api_secret"   env:"TRELLO_API_SECRET"`
	Token       string `yaml:"token"        env:"OAUTH_TOKEN"`
	TokenSecret string `yaml:"token_secret" env:"OAUTH_TOKEN_SECRET"`
	Endpoint    string `yaml:"endpoint"     env:"VELOCITY_TRELLO_ENDPOINT" env-default:"https://api.trello.com"`
}

// BoardConfig names the board and its lists. Reject and Finished are
// pipe-separated list names.
type BoardConfig struct {
	Name     string `yaml:"name"     env:"board_name"`
	Reject   string `yaml:"reject"   env:"reject"`
	Finished string `yaml:"finished" env:"finished"`
}

// SourceConfig selects where action documents come from.
type SourceConfig struct {
	Provider    string        `yaml:"provider"     env:"VELOCITY_SOURCE"            env-default:"trello"`
	Input       string        `yaml:"input"        env:"VELOCITY_INPUT"`
	PageSize    int           `yaml:"page_size"    env:"VELOCITY_PAGE_SIZE"         env-default:"1000"`
	Since       string        `yaml:"since"        env:"VELOCITY_SINCE"`
	Before      string        `yaml:"before"       env:"VELOCITY_BEFORE"`
	Brokers     string        `yaml:"brokers"      env:"VELOCITY_KAFKA_BROKERS"`
	Topic       string        `yaml:"topic"        env:"VELOCITY_KAFKA_TOPIC"`
	Partition   int           `yaml:"partition"    env:"VELOCITY_KAFKA_PARTITION"   env-default:"0"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"VELOCITY_KAFKA_IDLE_TIMEOUT" env-default:"10s"`
}

// OutputConfig selects table destinations. Kind is a comma-separated list
// of stdout, file, postgres and webhook.
type OutputConfig struct {
	Kind       string        `yaml:"kind"        env:"VELOCITY_OUTPUT"         env-default:"stdout"`
	Format     string        `yaml:"format"      env:"VELOCITY_FORMAT"         env-default:"tsv"`
	Path       string        `yaml:"path"        env:"VELOCITY_OUTPUT_PATH"    env-default:"counts.tsv"`
	Dated      bool          `yaml:"dated"       env:"VELOCITY_OUTPUT_DATED"   env-default:"false"`
	DSN        string        `yaml:"dsn"         env:"VELOCITY_DATABASE_DSN"`
	WebhookURL string        `yaml:"webhook_url" env:"VELOCITY_WEBHOOK_URL"`
	Async      bool          `yaml:"async"       env:"VELOCITY_OUTPUT_ASYNC"   env-default:"false"`
	Timeout    time.Duration `yaml:"timeout"     env:"VELOCITY_OUTPUT_TIMEOUT" env-default:"10s"`
}

// EngineConfig holds counting settings.
type EngineConfig struct {
	Dedup    bool   `yaml:"dedup"     env:"VELOCITY_DEDUP"     env-default:"false"`
	FillGaps bool   `yaml:"fill_gaps" env:"VELOCITY_FILL_GAPS" env-default:"false"`
	AsOf     string `yaml:"as_of"     env:"VELOCITY_AS_OF"`
}

// LogConfig holds logging settings. An empty Format picks JSON when the
// table goes to stdout and text otherwise.
type LogConfig struct {
	Level  string `yaml:"level"  env:"VELOCITY_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"VELOCITY_LOG_FORMAT"`
}

// MetricsConfig enables a Prometheus listener while counting.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"VELOCITY_METRICS_ADDR"`
}

// SplitLists splits a pipe-separated list of names. Blank entries are
// dropped, so "" is the empty set.
func SplitLists(s string) []string {
	var out []string
	for _, name := range strings.Split(s, "|") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// FinishedLists returns the lists whose cards count as finished.
func (c *Config) FinishedLists() []string { return SplitLists(c.Board.Finished) }

// RejectedLists returns the lists excluded from counting.
func (c *Config) RejectedLists() []string { return SplitLists(c.Board.Reject) }

// Outputs returns the configured output kinds in order.
func (c *Config) Outputs() []string {
	var out []string
	for _, k := range strings.Split(c.Output.Kind, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
