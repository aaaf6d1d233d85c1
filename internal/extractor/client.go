// Package extractor talks to the external face embedding service. The
// service accepts raw image bytes and returns zero or more detected faces,
// each with a fixed-dimension embedding; the client treats it as a black
// box and never validates embedding dimensionality.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/your-org/prism/internal/config"
	"github.com/your-org/prism/internal/engine"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ engine.Extractor = (*Client)(nil)

func NewClient(cfg config.ExtractorConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type extractResponse struct {
	Faces []struct {
		Embedding []float32 `json:"embedding"`
		BBox      []int32   `json:"bbox"`
		DetScore  float32   `json:"det_score"`
	} `json:"faces"`
	Error string `json:"error,omitempty"`
}

// ExtractFaces submits the image and returns every detected face. An empty
// slice means no face was found, which is a valid outcome, not an error.
// Transport failures and non-200 responses wrap engine.ErrExtractorUnavailable.
func (c *Client) ExtractFaces(ctx context.Context, image []byte) ([]engine.Face, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "query.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", body)
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extractor: %w: %w", engine.ErrExtractorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("extractor returned %d: %s: %w",
			resp.StatusCode, string(respBody), engine.ErrExtractorUnavailable)
	}

	var result extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w: %w", engine.ErrExtractorUnavailable, err)
	}
	// The service reports image decode problems in-band with an empty face
	// list. Treat that as invalid input rather than a service failure.
	if result.Error != "" {
		return nil, fmt.Errorf("%w: extractor rejected image: %s", engine.ErrInvalidInput, result.Error)
	}

	faces := make([]engine.Face, 0, len(result.Faces))
	for _, f := range result.Faces {
		faces = append(faces, engine.Face{
			Embedding: f.Embedding,
			BBox:      f.BBox,
			DetScore:  f.DetScore,
		})
	}
	return faces, nil
}

// Ping checks extractor availability via its root status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extractor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extractor returned status %d", resp.StatusCode)
	}
	return nil
}
