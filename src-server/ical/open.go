package ical

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"typedcal/src-server/ical/property"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// A calendar payload and where it came from.
type Source struct {
	Location string
	Body     []byte
	Hash     string // hex sha256 of Body
}

// Read a calendar from a local path or an http(s) URL.
func Open(ctx context.Context, location string) (*Source, error) {
	var (
		body []byte
		err  error
	)
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		body, err = fetch(ctx, location)
	default:
		body, err = os.ReadFile(location)
		if err != nil {
			err = fmt.Errorf("Open: can't read file %s: %w", location, err)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Source{
		Location: location,
		Body:     body,
		Hash:     fmt.Sprintf("%x", sha256.Sum256(body)),
	}, nil
}

func fetch(ctx context.Context, location string) ([]byte, error) {
	validUrl, err := url.ParseRequestURI(location)
	if err != nil {
		return nil, fmt.Errorf("Open: can't parse URL %s: %w", location, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, validUrl.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("Open: can't create HTTP request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Open: can't make HTTP request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open: unexpected status %s from %s", resp.Status, location)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Open: can't read response: %w", err)
	}
	return body, nil
}

// Get the raw properties of every VEVENT of the payload.
func (s *Source) Events() ([][]property.RawProperty, error) {
	return ParseCalendar(bytes.NewReader(s.Body))
}
