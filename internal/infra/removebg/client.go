// Package removebg is a client for the remove.bg background removal API.
package removebg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
	"github.com/yanqian/ai-wardrobe/pkg/util"
)

const defaultBaseURL = "https://api.remove.bg/v1.0"

// Client calls remove.bg with a per-request API key.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client. An empty base URL selects the public endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{baseURL: base, httpClient: &http.Client{Timeout: timeout}}
}

// Credits reports the account balance.
type Credits struct {
	Total     float64 `json:"total"`
	FreeCalls int     `json:"free_calls"`
}

// Remove uploads the image and returns the background-free PNG.
func (c *Client) Remove(ctx context.Context, image []byte, apiKey string) ([]byte, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apperrors.Wrap(apperrors.CodeConfiguration, "remove.bg api key is not configured", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image_file"; filename="image"`)
	header.Set("Content-Type", http.DetectContentType(image))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image part: %w", err)
	}
	if err := writer.WriteField("size", "auto"); err != nil {
		return nil, fmt.Errorf("write size field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/removebg", &body)
	if err != nil {
		return nil, fmt.Errorf("build remove.bg request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request remove.bg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return io.ReadAll(resp.Body)
	}
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return nil, classify(resp.StatusCode, payload)
}

// Credits fetches the remaining account credits.
func (c *Client) Credits(ctx context.Context, apiKey string) (Credits, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Credits{}, apperrors.Wrap(apperrors.CodeConfiguration, "remove.bg api key is not configured", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/account", nil)
	if err != nil {
		return Credits{}, fmt.Errorf("build remove.bg account request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credits{}, fmt.Errorf("request remove.bg account: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credits{}, fmt.Errorf("read remove.bg account: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Credits{}, classify(resp.StatusCode, payload)
	}
	var decoded struct {
		Data struct {
			Attributes struct {
				Credits struct {
					Total float64 `json:"total"`
				} `json:"credits"`
				API struct {
					FreeCalls int `json:"free_calls"`
				} `json:"api"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Credits{}, fmt.Errorf("decode remove.bg account: %w", err)
	}
	return Credits{
		Total:     decoded.Data.Attributes.Credits.Total,
		FreeCalls: decoded.Data.Attributes.API.FreeCalls,
	}, nil
}

func classify(status int, payload []byte) error {
	switch status {
	case http.StatusPaymentRequired:
		return &apperrors.AppError{Code: apperrors.CodeConfiguration, Message: "remove.bg credits exhausted", Status: status}
	case http.StatusForbidden:
		return &apperrors.AppError{Code: apperrors.CodeConfiguration, Message: "remove.bg api key is invalid", Status: status}
	case http.StatusBadRequest:
		return apperrors.Upstream("remove.bg rejected the image", status, errorTitle(payload))
	default:
		return apperrors.Upstream(fmt.Sprintf("remove.bg request failed with HTTP %d", status), status, util.Truncate(string(payload), util.DiagnosticLimit))
	}
}

func errorTitle(payload []byte) string {
	var decoded struct {
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(payload, &decoded); err == nil && len(decoded.Errors) > 0 && decoded.Errors[0].Title != "" {
		return util.Truncate(decoded.Errors[0].Title, util.DiagnosticLimit)
	}
	return "invalid request"
}
