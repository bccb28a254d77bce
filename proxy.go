package fluffer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
)

type proxyResponse struct {
	resp *http.Response
	err  error
}

// Proxy relays an upstream HTTP response. It takes the pair returned by
// http.Client.Do so calls can be wrapped directly:
//
//	return fluffer.Proxy(http.Get("https://example.com/feed.gmi"))
//
// Transport errors, non-2xx statuses and missing or malformed content
// types become status 43. The body is always closed.
func Proxy(resp *http.Response, err error) Response {
	return proxyResponse{resp: resp, err: err}
}

// Fetch issues a GET for rawURL bound to ctx and proxies the result. A nil
// client means http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, rawURL string) Response {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Proxy(nil, err)
	}
	return Proxy(client.Do(req))
}

// Render implements Response.
func (p proxyResponse) Render(ctx context.Context) []byte {
	if p.resp != nil && p.resp.Body != nil {
		defer p.resp.Body.Close()
	}

	if p.err != nil {
		return header(StatusProxyError, "http error :: "+transportMessage(p.err))
	}
	if p.resp == nil {
		return header(StatusProxyError, "http error :: no response")
	}
	if p.resp.StatusCode < 200 || p.resp.StatusCode > 299 {
		return header(StatusProxyError, "http: "+p.resp.Status)
	}

	contentType := p.resp.Header.Get("Content-Type")
	if contentType == "" {
		return header(StatusProxyError, "http: invalid content type.")
	}
	if !visibleASCII(contentType) {
		return header(StatusProxyError, "http: content type corrupted.")
	}

	var body []byte
	if p.resp.Body != nil {
		b, err := io.ReadAll(p.resp.Body)
		if err != nil {
			return header(StatusProxyError, "http error :: "+transportMessage(err))
		}
		body = b
	}

	return Document(contentType, body).Render(ctx)
}

// transportMessage drops the request URL from client errors so upstream
// addresses are not echoed to the visitor.
func transportMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}

func visibleASCII(s string) bool {
	for i := range len(s) {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
