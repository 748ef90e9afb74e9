package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoIP is returned when the lookup response carries no ip field.
var ErrNoIP = errors.New("lookup response has no ip")

// ExternalIP is the part of an ipinfo-style response the service uses.
type ExternalIP struct {
	IP  string `json:"ip"`
	Org string `json:"org"`
}

// Resolver asks a public lookup service which address this host egresses from.
type Resolver struct {
	url     string
	token   string
	client  *http.Client
	timeout time.Duration
}

// NewResolver creates a resolver for an ipinfo-compatible endpoint.
func NewResolver(url, token string, timeout time.Duration) *Resolver {
	return &Resolver{
		url:     url,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Resolve performs a single lookup request. There are no retries.
func (r *Resolver) Resolve(ctx context.Context) (*ExternalIP, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var resp ExternalIP
	if err := r.fetchJSON(ctx, &resp); err != nil {
		return nil, fmt.Errorf("external ip lookup: %w", err)
	}
	resp.IP = strings.TrimSpace(resp.IP)
	if resp.IP == "" {
		return nil, fmt.Errorf("external ip lookup: %w", ErrNoIP)
	}
	return &resp, nil
}

func (r *Resolver) fetchJSON(ctx context.Context, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
