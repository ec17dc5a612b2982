package rembg

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	nhttp "github.com/chaos-io/cutout/util/http"
)

const removePath = "/api/remove"

// HTTPRemover 调用 rembg 兼容的 HTTP 服务（rembg s）
type HTTPRemover struct {
	baseURL string
	model   string
	cli     nhttp.IClient
}

// NewHTTPRemover timeout 为 0 时不限制单次请求时间
func NewHTTPRemover(baseURL, model string, timeout time.Duration) *HTTPRemover {
	return &HTTPRemover{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		cli:     nhttp.NewHTTPClientWithTimeout(timeout),
	}
}

func (h *HTTPRemover) Name() string {
	if h.model == "" {
		return "http"
	}
	return "http/" + h.model
}

/*
	curl -X POST "$BASE_URL/api/remove" \
	  -F "file=@my_image.png" \
	  -F "model=u2net" -o out.png
*/
func (h *HTTPRemover) Remove(ctx context.Context, png []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if h.model != "" {
		if err := writer.WriteField("model", h.model); err != nil {
			return nil, fmt.Errorf("write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var out []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: h.baseURL + removePath,
		Method:     http.MethodPost,
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &out,
	}
	if err := h.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("empty response from %s", reqParam.RequestURI)
	}
	return out, nil
}

// Ping 请求服务根路径，只要能返回 2xx 即认为可用
func (h *HTTPRemover) Ping(ctx context.Context) error {
	reqParam := &nhttp.RequestParam{
		RequestURI: h.baseURL + "/",
		Method:     http.MethodGet,
		Timeout:    5 * time.Second,
	}
	if err := h.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return fmt.Errorf("ping %s: %w", h.baseURL, err)
	}
	return nil
}
