// Package lookup holds the error taxonomy shared by the nutrition and recipe
// providers and the JSON fetch they all go through.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrNotFound matches any *Error of kind KindNoMatch via errors.Is.
var ErrNotFound = errors.New("no match")

type Kind int

const (
	KindNoMatch Kind = iota
	KindTransport
	KindStatus
	KindDecode
	KindCredential
)

func (k Kind) String() string {
	switch k {
	case KindNoMatch:
		return "no_match"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindCredential:
		return "credential"
	default:
		return "unknown"
	}
}

// Error describes why a provider produced no value. Callers treat every kind
// as "absent"; the kind and cause are kept for logs.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NoMatch(provider, query string) error {
	return &Error{Provider: provider, Kind: KindNoMatch, Err: fmt.Errorf("%w for %q", ErrNotFound, query)}
}

func Decode(provider string, err error) error {
	return &Error{Provider: provider, Kind: KindDecode, Err: err}
}

func Credential(provider string, err error) error {
	return &Error{Provider: provider, Kind: KindCredential, Err: err}
}

// KindOf returns the kind of a lookup error, or KindTransport for errors that
// did not come from this package.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindTransport
}

// maxErrorBody bounds how much of a failed response is kept for the log.
const maxErrorBody = 512

// GetJSON sends req and decodes a 2xx JSON body into dst. Transport failures,
// non-2xx statuses and undecodable bodies come back as *Error.
func GetJSON(ctx context.Context, client *http.Client, req *http.Request, provider string, dst any) error {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Provider: provider, Kind: KindTransport, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "provider", provider, "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{Provider: provider, Kind: KindStatus, Status: resp.StatusCode, Err: fmt.Errorf("%s", body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return Decode(provider, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// Number reads a loosely typed JSON value as a float. Providers sometimes
// put placeholder strings where numbers belong; those report false.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
