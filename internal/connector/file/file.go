// Package file reads action documents from a local export: either a JSON
// array or newline-delimited JSON.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/crimson-sun/velocity/internal/connector"
	"github.com/crimson-sun/velocity/internal/model"
)

func init() {
	connector.Register("file", func() connector.Connector {
		return &Connector{}
	})
}

// Connector reads cfg.Endpoint, or standard input when it is "-".
type Connector struct{}

func (c *Connector) Actions(ctx context.Context, cfg connector.ConnectorConfig, _ connector.QueryParams) iter.Seq2[model.RawAction, error] {
	if cfg.Endpoint == "" {
		return connector.Fail(errors.New("file connector: no input path"))
	}
	return func(yield func(model.RawAction, error) bool) {
		var r io.Reader = os.Stdin
		if cfg.Endpoint != "-" {
			f, err := os.Open(cfg.Endpoint)
			if err != nil {
				yield(nil, fmt.Errorf("file connector: %w", err))
				return
			}
			defer f.Close()
			r = f
		}
		for raw, err := range Decode(ctx, r) {
			if !yield(raw, err) || err != nil {
				return
			}
		}
	}
}

// Decode streams documents from r. A leading '[' selects array mode;
// anything else is read as a sequence of JSON objects.
func Decode(ctx context.Context, r io.Reader) iter.Seq2[model.RawAction, error] {
	return func(yield func(model.RawAction, error) bool) {
		br := bufio.NewReader(r)
		first, err := peekNonSpace(br)
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("file connector: %w", err))
			return
		}

		dec := json.NewDecoder(br)
		array := first == '['
		if array {
			if _, err := dec.Token(); err != nil {
				yield(nil, fmt.Errorf("file connector: %w", err))
				return
			}
		}
		for n := 0; ; n++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if array && !dec.More() {
				return
			}
			var raw model.RawAction
			if err := dec.Decode(&raw); err != nil {
				if err == io.EOF && !array {
					return
				}
				yield(nil, fmt.Errorf("file connector: document %d: %w", n, err))
				return
			}
			if !yield(raw, nil) {
				return
			}
		}
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
