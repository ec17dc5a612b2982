package caption

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/imaging"
	nhttp "github.com/chaos-io/cutout/util/http"
)

// Bundle 视觉语言模型的调用配置，进程启动时加载一次，显式传给 Generate
type Bundle struct {
	Endpoint  string
	Model     string
	Prompt    string
	MaxTokens int

	apiKey string
	cli    nhttp.IClient
}

// Load 校验配置并创建 Bundle
func Load(cfg *config.CaptionConfig) (*Bundle, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("caption endpoint is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("caption model is required")
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = config.Default().Caption.Prompt
	}

	return &Bundle{
		Endpoint:  endpoint,
		Model:     strings.TrimSpace(cfg.Model),
		Prompt:    prompt,
		MaxTokens: cfg.MaxTokens,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		cli:       nhttp.NewHTTPClientWithTimeout(cfg.Timeout),
	}, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate 为图片生成一句描述
func Generate(ctx context.Context, b *Bundle, img []byte) (string, error) {
	if b == nil {
		return "", errors.New("caption bundle is nil")
	}

	decoded, format, err := imaging.Decode(img)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	// 模型端只保证支持 png/jpeg，其它格式先转成 PNG
	mime := "image/" + format
	if format != "png" && format != "jpeg" {
		if img, err = imaging.EncodePNG(decoded.Normalize()); err != nil {
			return "", fmt.Errorf("convert image: %w", err)
		}
		mime = "image/png"
	}

	req := chatRequest{
		Model:     b.Model,
		MaxTokens: b.MaxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: b.Prompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img),
				}},
			},
		}},
	}

	header := map[string]string{"Content-Type": "application/json"}
	if b.apiKey != "" {
		header["Authorization"] = "Bearer " + b.apiKey
	}

	var resp chatResponse
	reqParam := &nhttp.RequestParam{
		RequestURI: b.Endpoint + "/chat/completions",
		Method:     http.MethodPost,
		Header:     header,
		Body:       req,
		Response:   &resp,
	}
	if err := b.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return "", fmt.Errorf("generate caption: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("generate caption: no choices returned")
	}
	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", errors.New("generate caption: empty caption")
	}
	return caption, nil
}
