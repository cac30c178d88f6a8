package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sjsage522/socialscraper/internal/record"
)

// ErrNoJobID is returned when a submission is accepted without a job id
var ErrNoJobID = errors.New("no snapshot_id returned")

// ErrMissingAPIKey is returned when the client has no bearer token
var ErrMissingAPIKey = errors.New("bright data API key is missing")

// BrightData implements Provider on top of the Bright Data datasets API
type BrightData struct {
	baseURL   string
	apiKey    string
	datasetID string
	client    *http.Client
}

// NewBrightData creates a new Bright Data client
func NewBrightData(baseURL, apiKey, datasetID string) *BrightData {
	return &BrightData{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		datasetID: datasetID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CleanUsername strips a leading @ and surrounding whitespace
func CleanUsername(username string) string {
	return strings.TrimSpace(strings.ReplaceAll(username, "@", ""))
}

// ProfileURL builds the TikTok profile URL used as the dataset input
func ProfileURL(username string) string {
	return "https://www.tiktok.com/@" + CleanUsername(username)
}

// Submit triggers a dataset collection for the profile of username
func (b *BrightData) Submit(ctx context.Context, username string) (string, error) {
	if b.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	endpoint := fmt.Sprintf("%s/datasets/v3/trigger?dataset_id=%s&include_errors=true",
		b.baseURL, url.QueryEscape(b.datasetID))

	payload, err := json.Marshal([]map[string]string{{"url": ProfileURL(username)}})
	if err != nil {
		return "", fmt.Errorf("failed to encode trigger payload: %w", err)
	}

	req, err := b.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to trigger collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("trigger unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode trigger response: %w", err)
	}
	if result.SnapshotID == "" {
		return "", ErrNoJobID
	}

	return result.SnapshotID, nil
}

// PollOnce reads the progress of a snapshot
func (b *BrightData) PollOnce(ctx context.Context, snapshotID string) (JobStatus, error) {
	endpoint := fmt.Sprintf("%s/datasets/v3/progress/%s", b.baseURL, url.PathEscape(snapshotID))

	req, err := b.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusPending, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return StatusPending, fmt.Errorf("failed to poll progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusPending, fmt.Errorf("progress unexpected status code: %d", resp.StatusCode)
	}

	var progress struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&progress); err != nil {
		return StatusPending, fmt.Errorf("failed to decode progress response: %w", err)
	}

	return Classify(progress.Status), nil
}

// Retrieve downloads the snapshot payload as JSON
func (b *BrightData) Retrieve(ctx context.Context, snapshotID string) ([]record.RawItem, error) {
	endpoint := fmt.Sprintf("%s/datasets/v3/snapshot/%s?format=json", b.baseURL, url.PathEscape(snapshotID))

	req, err := b.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("snapshot unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var items []record.RawItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return items, nil
}

func (b *BrightData) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
