package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	// error bodies longer than this are truncated in the returned error
	maxErrorBody = 512
)

type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient() IClient {
	return NewHTTPClientWithTimeout(defaultTimeout)
}

// NewHTTPClientWithTimeout builds a client whose overall request timeout is
// timeout; zero disables the client level timeout.
func NewHTTPClientWithTimeout(timeout time.Duration) IClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error {
	if requestParam == nil {
		return errors.New("request param is nil")
	}

	if requestParam.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestParam.Timeout)
		defer cancel()
	}

	body, contentType, err := encodeBody(requestParam.Body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, requestParam.Method, requestParam.RequestURI, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range requestParam.Header {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	requestParam.StatusCode = resp.StatusCode
	requestParam.ContentType = resp.Header.Get("Content-Type")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, string(data))
	}

	switch out := requestParam.Response.(type) {
	case nil:
		return nil
	case *[]byte:
		*out = data
		return nil
	default:
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}
}

// encodeBody turns the request body into a reader and a default content type.
func encodeBody(body interface{}) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, "text/plain", nil
	case []byte:
		return bytes.NewReader(b), "application/json", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
