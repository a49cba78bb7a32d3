// Package directory holds the HTTP clients for the user and guest
// services. Both speak the platform convention: API-key header,
// {"data": ...} response envelope, JSON bodies.
package directory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "appointment-service/1.0"

// Host is the identity projection the appointment service consumes
// for display enrichment.
type Host struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// Guest is a participant record owned by the guest service.
type Guest struct {
	GuestID       string `json:"guest_id"`
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
}

// Config points a client at one collaborator service.
type Config struct {
	BaseURL string
	APIKey  string

	// Timeout bounds every lookup. A stuck collaborator must never
	// stall a read path indefinitely.
	Timeout time.Duration
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newClient(cfg Config) client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// getJSON performs a GET and decodes the {"data": ...} envelope into
// out. Returns errNotFound for 404 so callers can separate "absent"
// from "broken".
var errNotFound = fmt.Errorf("directory: not found")

func (c client) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory: unexpected status %d from %s", resp.StatusCode, path)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}

func escape(segment string) string { return url.PathEscape(segment) }
