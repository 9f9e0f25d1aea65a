package jobsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// artifactEnvelope is the metadata-endpoint response shape; Body
// carries the artifact content as a string.
type artifactEnvelope struct {
	Success bool   `json:"success"`
	Body    string `json:"body"`
	Message string `json:"message"`
}

// ArtifactFetcher retrieves a job artifact's content by tag value.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, jobId, artifactId string) (string, error)
	ArtifactURL(jobId, artifactId string) string
}

// HTTPFetcher fetches artifacts over the REST surface.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  client,
	}
}

// ArtifactURL is the raw-bytes endpoint for an artifact, suitable for
// handing to a media surface as a source.
func (f *HTTPFetcher) ArtifactURL(jobId, artifactId string) string {
	return fmt.Sprintf("%s/api/artifact/%s/%s", f.baseURL, jobId, artifactId)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, jobId, artifactId string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ArtifactURL(jobId, artifactId), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	var envelope artifactEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("failed to decode artifact response: %w", err)
	}
	if !envelope.Success {
		return "", errors.New(envelope.Message)
	}

	return envelope.Body, nil
}
