package http

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/http.go -package=mocks . IClient
type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam describes one outgoing request.
//
// Body may be nil, an io.Reader, a []byte or any value that encodes to JSON.
// Response may be nil (body discarded), a *[]byte (raw body) or a pointer
// that the JSON body is decoded into.
type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	Body       interface{}
	Response   interface{}

	Timeout time.Duration

	// StatusCode and ContentType are filled in after the request completes.
	StatusCode  int
	ContentType string
}
