// Package uploads sends files to the storage endpoints and returns their
// stored URLs. Callers validate type and size first; the client does not
// re-validate.
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"freelance-checkout-system/models"
)

// Kind selects the destination endpoint.
type Kind string

const (
	KindResume   Kind = "serviceRs"
	KindDocument Kind = "documents"
)

func (k Kind) endpoint() string {
	if k == KindResume {
		return "/api/uploadServiceRs"
	}
	return "/api/uploadDocuments"
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upload streams the file as multipart form data and returns the stored URL.
// A non-2xx response surfaces the server-provided message; the caller must
// abort the checkout sequence on error.
func (c *Client) Upload(ctx context.Context, file models.FileRef, kind Kind) (string, error) {
	src, err := os.Open(file.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload body: %w", err)
	}

	url := c.baseURL + kind.endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call upload endpoint: %w", err)
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := parsed.Error
		if msg == "" {
			msg = string(raw)
		}
		return "", fmt.Errorf("upload of %s failed with status %d: %s", file.Name, resp.StatusCode, msg)
	}

	if parsed.URL == "" {
		return "", fmt.Errorf("upload endpoint returned no url for %s", file.Name)
	}
	return parsed.URL, nil
}
