package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
)

// BaseAdapter is embedded by every upstream adapter. It performs the JSON
// exchange and maps failures to domain errors so adapters only translate.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter binds a client to the upstream's display name.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	if client == nil {
		panic("acl: client is required")
	}

	return BaseAdapter{client: client, serviceName: serviceName}
}

// ServiceName returns the upstream name used in errors.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// getJSON performs a GET and decodes the body into out.
func (a *BaseAdapter) getJSON(ctx context.Context, path, operation, entityID string, out any) error {
	resp, err := a.client.Get(ctx, path)

	return a.finish(ctx, resp, err, operation, entityID, out)
}

// sendJSON encodes in as the body of a POST or PUT and decodes the reply into
// out. A nil out discards the reply.
func (a *BaseAdapter) sendJSON(ctx context.Context, method, path, operation string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", operation, err)
	}

	var resp *http.Response

	switch method {
	case http.MethodPut:
		resp, err = a.client.Put(ctx, path, bytes.NewReader(payload))
	default:
		resp, err = a.client.Post(ctx, path, bytes.NewReader(payload))
	}

	return a.finish(ctx, resp, err, operation, "", out)
}

func (a *BaseAdapter) finish(ctx context.Context, resp *http.Response, err error, operation, entityID string, out any) error {
	logger := logging.FromContext(ctx)

	if err != nil {
		return MapHTTPError(nil, err, a.serviceName, operation, entityID)
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Log(ctx, logging.LevelTrace, "upstream response",
		slog.String("operation", operation),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return MapHTTPError(resp, nil, a.serviceName, operation, entityID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return domain.NewUnavailableError(a.serviceName, fmt.Sprintf("decoding %s response: %v", operation, err))
	}

	return nil
}

// Translator converts one external DTO into a domain value.
type Translator[External any, Domain any] func(ext *External) (Domain, error)

// TranslateSlice translates every item, failing on the first error.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]D, error) {
	result := make([]D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}

// FilterSlice translates every item and drops the ones that fail, logging
// each at debug.
func FilterSlice[E any, D any](ctx context.Context, items []E, translate Translator[E, D]) []D {
	result := make([]D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			logging.FromContext(ctx).DebugContext(ctx, "dropping upstream item",
				slog.Int("index", i),
				slog.Any("error", err),
			)

			continue
		}

		result = append(result, translated)
	}

	return result
}

// ValidateRequired returns a validation error for an empty value.
func ValidateRequired(value, fieldName string) error {
	if value == "" {
		return domain.NewValidationError(fieldName, "is required")
	}

	return nil
}

// listBody decodes either a bare JSON array or an object wrapping the array
// under key.
type listBody[T any] struct {
	key   string
	Items []T
}

func (l *listBody[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}

	raw, ok := wrapped[l.key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		l.Items = nil

		return nil
	}

	return json.Unmarshal(raw, &l.Items)
}
