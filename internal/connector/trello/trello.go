// Package trello reads board actions from the board service's REST API.
package trello

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/velocity/internal/connector"
	"github.com/crimson-sun/velocity/internal/connector/httpclient"
	"github.com/crimson-sun/velocity/internal/model"
)

const (
	defaultEndpoint = "https://api.trello.com"
	defaultPageSize = 1000
	maxPageSize     = 1000
)

var (
	// ErrBoardNotFound is returned when no board name starts with the
	// configured prefix.
	ErrBoardNotFound = errors.New("trello: board not found")

	// ErrAmbiguousBoard is returned when more than one board matches.
	ErrAmbiguousBoard = errors.New("trello: more than one board matches")
)

func init() {
	connector.Register("trello", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements the connector.Connector interface for the board
// service. cfg.APIKey and cfg.Token authenticate; cfg.Extra carries either
// "board_id" or "board_name" (a name prefix).
type Connector struct{}

// Board is a board visible to the credentials.
type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

// List is a column on a board.
type List struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

func newClient(cfg connector.ConnectorConfig) *httpclient.Client {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultEndpoint
	}
	return httpclient.New(baseURL, httpclient.WithQueryAuth(map[string]string{
		"key":   cfg.APIKey,
		"token": cfg.Token,
	}))
}

// Boards returns every board visible to the credentials.
func Boards(ctx context.Context, cfg connector.ConnectorConfig) ([]Board, error) {
	var boards []Board
	q := url.Values{"fields": {"id,name,closed"}}
	if err := newClient(cfg).GetJSON(ctx, "/1/members/me/boards", q, &boards); err != nil {
		return nil, fmt.Errorf("trello: list boards: %w", err)
	}
	return boards, nil
}

// Lists returns every list on the board with the given id.
func Lists(ctx context.Context, cfg connector.ConnectorConfig, boardID string) ([]List, error) {
	var lists []List
	q := url.Values{"filter": {"all"}, "fields": {"id,name,closed"}}
	if err := newClient(cfg).GetJSON(ctx, "/1/boards/"+url.PathEscape(boardID)+"/lists", q, &lists); err != nil {
		return nil, fmt.Errorf("trello: list lists: %w", err)
	}
	return lists, nil
}

// MatchBoards returns the boards whose names start with prefix. Names are
// compared in Unicode NFC so composed and decomposed spellings agree.
func MatchBoards(boards []Board, prefix string) []Board {
	p := norm.NFC.String(prefix)
	var out []Board
	for _, b := range boards {
		if strings.HasPrefix(norm.NFC.String(b.Name), p) {
			out = append(out, b)
		}
	}
	return out
}

// FindBoard resolves prefix to exactly one board.
func FindBoard(ctx context.Context, cfg connector.ConnectorConfig, prefix string) (Board, error) {
	boards, err := Boards(ctx, cfg)
	if err != nil {
		return Board{}, err
	}
	matches := MatchBoards(boards, prefix)
	switch len(matches) {
	case 0:
		return Board{}, fmt.Errorf("%w: %q", ErrBoardNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, b := range matches {
			names[i] = b.Name
		}
		return Board{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousBoard, prefix, strings.Join(names, ", "))
	}
}

// Actions pages backwards through the board's action history, newest
// first, fetching the next page only when the previous one is consumed.
func (c *Connector) Actions(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) iter.Seq2[model.RawAction, error] {
	boardID, name := cfg.Extra["board_id"], cfg.Extra["board_name"]
	if boardID == "" && name == "" {
		return connector.Fail(fmt.Errorf("trello connector: missing required config key \"board_name\" in Extra"))
	}
	return func(yield func(model.RawAction, error) bool) {
		boardID := boardID
		if boardID == "" {
			b, err := FindBoard(ctx, cfg, name)
			if err != nil {
				yield(nil, err)
				return
			}
			boardID = b.ID
		}

		client := newClient(cfg)
		path := "/1/boards/" + url.PathEscape(boardID) + "/actions"
		limit := pageSize(params.Limit)
		before := ""
		if !params.Before.IsZero() {
			before = params.Before.UTC().Format(time.RFC3339)
		}

		for {
			q := url.Values{"limit": {strconv.Itoa(limit)}}
			if len(params.Kinds) > 0 {
				q.Set("filter", strings.Join(params.Kinds, ","))
			}
			if !params.Since.IsZero() {
				q.Set("since", params.Since.UTC().Format(time.RFC3339))
			}
			if before != "" {
				q.Set("before", before)
			}

			var page []model.RawAction
			if err := client.GetJSON(ctx, path, q, &page); err != nil {
				yield(nil, fmt.Errorf("trello connector: %w", err))
				return
			}
			for _, raw := range page {
				if !yield(raw, nil) {
					return
				}
			}
			if len(page) < limit {
				return
			}
			before = page[len(page)-1].ID()
			if before == "" {
				yield(nil, fmt.Errorf("trello connector: action without id, cannot paginate"))
				return
			}
		}
	}
}

func pageSize(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	return min(n, maxPageSize)
}
