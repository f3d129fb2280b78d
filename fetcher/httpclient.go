package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/ground-x/xscanner/common"
)

// httpClient wraps a single fasthttp.Client shared by every chain adapter.
// fasthttp is the teacher's dependency of choice for outbound HTTP (see
// go.mod); each adapter only needs GET/POST-JSON against a chain RPC
// endpoint, well within fasthttp's zero-allocation request/response reuse.
type httpClient struct {
	c       *fasthttp.Client
	timeout time.Duration
}

func newHTTPClient(timeout time.Duration) *httpClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpClient{
		c: &fasthttp.Client{
			MaxConnsPerHost: 32,
		},
		timeout: timeout,
	}
}

// getJSON issues a GET request and returns the raw response body.
func (h *httpClient) getJSON(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := h.do(ctx, req, resp); err != nil {
		return nil, err
	}
	body := append([]byte(nil), resp.Body()...)
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, common.Wrap(common.KindTransient, "fetcher.getJSON",
			httpStatusError(url, resp.StatusCode()))
	}
	return body, nil
}

// postJSON issues a POST request with a JSON body (used by EVM-like
// chains' JSON-RPC endpoints) and returns the raw response body.
func (h *httpClient) postJSON(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := h.do(ctx, req, resp); err != nil {
		return nil, err
	}
	body := append([]byte(nil), resp.Body()...)
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, common.Wrap(common.KindTransient, "fetcher.postJSON",
			httpStatusError(url, resp.StatusCode()))
	}
	return body, nil
}

func (h *httpClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	deadline := h.timeout
	if d, ok := ctx.Deadline(); ok {
		if remaining := time.Until(d); remaining < deadline {
			deadline = remaining
		}
	}
	if err := h.c.DoTimeout(req, resp, deadline); err != nil {
		return common.Wrap(common.KindTransient, "fetcher.do", err)
	}
	return nil
}

type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.status, e.url)
}

func httpStatusError(url string, status int) error {
	return &statusError{url: url, status: status}
}
