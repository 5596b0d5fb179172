package connector

import (
	"context"
	"iter"
	"time"

	"github.com/crimson-sun/velocity/internal/model"
)

// Connector defines the interface all action sources must implement.
type Connector interface {
	// Actions lazily yields every action document matching params. A
	// non-nil error is yielded at most once and ends the sequence.
	Actions(ctx context.Context, cfg ConnectorConfig, params QueryParams) iter.Seq2[model.RawAction, error]
}

// ConnectorConfig holds provider-specific connection settings.
type ConnectorConfig struct {
	Provider string
	APIKey   string
	Token    string
	Endpoint string
	Extra    map[string]string
}

// QueryParams narrows which actions a source returns. Zero values mean no
// restriction; sources that cannot filter server-side ignore them.
type QueryParams struct {
	Since  time.Time
	Before time.Time
	Limit  int      // page size for paginated sources
	Kinds  []string // action-kind filter, qualifiers allowed
}
