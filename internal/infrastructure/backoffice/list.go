package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sangkips/velo-register/pkg/apperror"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// listEnvelope covers the paginated shapes list endpoints answer with
type listEnvelope[T any] struct {
	Results []T     `json:"results"`
	Data    []T     `json:"data"`
	Next    *string `json:"next"`
}

// decodeList is the one place that knows list endpoints answer either with
// a bare array or with {results|data, next}. It returns the items and the
// next page URL, if any.
func decodeList[T any](body []byte) ([]T, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	}

	var env listEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, "", err
	}
	items := env.Results
	if items == nil {
		items = env.Data
	}
	if items == nil {
		items = []T{}
	}
	next := ""
	if env.Next != nil {
		next = *env.Next
	}
	return items, next, nil
}

// listAll follows next links until the listing is exhausted
func listAll[T any](ctx context.Context, c *Client, token *oauth2.Token, firstURL string) ([]T, error) {
	var all []T
	pageURL := firstURL
	for page := 0; pageURL != ""; page++ {
		if page >= c.maxListPages {
			c.logger.Warn("listing truncated",
				zap.String("url", firstURL),
				zap.Int("pages", page))
			break
		}

		body, err := c.do(ctx, token, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		items, next, err := decodeList[T](body)
		if err != nil {
			return nil, apperror.NewTransportError("Unexpected list response", fmt.Errorf("page %d of %s: %w", page+1, firstURL, err))
		}
		all = append(all, items...)
		pageURL = next
	}
	return all, nil
}
