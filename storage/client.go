// Package storage uploads files to the hosted object store over its HTTP
// API and returns public URLs for persisted objects.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Uploader is the narrow interface handlers depend on.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Client talks to the object store's HTTP upload endpoint.
type Client struct {
	endpoint string
	bucket   string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, bucket, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		bucket:   bucket,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores the object under key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if key == "" {
		return "", fmt.Errorf("storage: empty key")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("key", c.bucket+"/"+key); err != nil {
		return "", fmt.Errorf("storage: write key field: %w", err)
	}

	part, err := writer.CreateFormFile("file", key)
	if err != nil {
		return "", fmt.Errorf("storage: create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", fmt.Errorf("storage: copy body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("storage: read response: %w", err)
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("storage: upload failed with status %d: %s", res.StatusCode, raw)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("storage: parse response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("storage: response missing url")
	}
	return out.URL, nil
}

// PropertyPhotoKey builds the deterministic key for a property photo.
func PropertyPhotoKey(propertyID, filename string) string {
	return fmt.Sprintf("properties/%s/%d-%s", propertyID, time.Now().UnixNano(), sanitize(filename))
}

// PaymentProofKey builds the deterministic key for a payment proof.
func PaymentProofKey(paymentID, filename string) string {
	return fmt.Sprintf("payments/%s/%d-%s", paymentID, time.Now().UnixNano(), sanitize(filename))
}

// MaintenancePhotoKey builds the key for a maintenance request photo.
func MaintenancePhotoKey(requestID, filename string) string {
	return fmt.Sprintf("maintenance/%s/%d-%s", requestID, time.Now().UnixNano(), sanitize(filename))
}

// DocumentKey builds the deterministic key for an entity document.
func DocumentKey(entityType, entityID, filename string) string {
	return fmt.Sprintf("documents/%s/%s/%d-%s", entityType, entityID, time.Now().UnixNano(), sanitize(filename))
}

func sanitize(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	if filename == "" {
		return "file"
	}
	return filename
}
