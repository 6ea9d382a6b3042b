package bitbucket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// fetchAll walks a cursor-paginated endpoint and accumulates every
// record found under key, preserving server order.
//
// The protocol: each response is a JSON object carrying a list of
// records under key plus an optional nextPageStart cursor. An absent or
// null cursor is the sole termination signal. An empty record list with
// a cursor present does NOT terminate the walk; the next request still
// fires. A page missing key, or carrying a non-list value under it, is
// logged and treated as empty, and the cursor is still honored.
//
// Transient page failures are retried on the same cursor with
// exponential backoff, bounded by the client's retry budget. Exhaustion
// surfaces the last error to the caller. Client errors (4xx) are not
// retried.
func fetchAll[T any](ctx context.Context, c *Client, path, key string, limit int) ([]T, error) {
	var out []T
	var start *int

	for {
		page, err := c.retryPage(ctx, path, start, limit)
		if err != nil {
			return nil, err
		}

		out = append(out, decodeRecords[T](c.logger, page, path, key)...)

		next := nextCursor(page)
		if next == nil {
			return out, nil
		}
		start = next
	}
}

// retryPage fetches one page, retrying the same cursor on transient
// failures.
func (c *Client) retryPage(ctx context.Context, path string, start *int, limit int) (map[string]json.RawMessage, error) {
	var page map[string]json.RawMessage

	op := func() error {
		var err error
		page, err = c.getPage(ctx, path, start, limit)
		if err == nil {
			return nil
		}

		var se *StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			return backoff.Permanent(err)
		}

		c.logger.Warn("page fetch failed, retrying",
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval

	return page, backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
}

func decodeRecords[T any](logger *zap.Logger, page map[string]json.RawMessage, path, key string) []T {
	raw, ok := page[key]
	if !ok {
		logger.Warn("page missing data key, treating as empty",
			zap.String("path", path),
			zap.String("key", key))
		return nil
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Warn("unexpected value under data key, skipping page",
			zap.String("path", path),
			zap.String("key", key),
			zap.Error(err))
		return nil
	}

	return records
}

// nextCursor returns the page's nextPageStart, or nil when the field is
// absent or null.
func nextCursor(page map[string]json.RawMessage) *int {
	raw, ok := page["nextPageStart"]
	if !ok {
		return nil
	}

	var next *int
	if err := json.Unmarshal(raw, &next); err != nil {
		return nil
	}
	return next
}
