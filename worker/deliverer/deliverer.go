package deliverer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

var ErrRequestDenied = errors.New("request denied by acl")

type Deliverer interface {
	Deliver(ctx context.Context, req *Request) (res *Response)
}

// Request is HTTP request
type Request struct {
	URL     string
	Method  string
	Payload []byte
	Headers map[string]string
	Timeout time.Duration
}

// Response is HTTP response
type Response struct {
	StatusCode   int
	Header       http.Header
	ResponseBody []byte
	Request      *Request
	Latency      time.Duration
	Error        error
}

func (r *Response) Is2xx() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Timeout reports whether the request was aborted by its deadline.
func (r *Response) Timeout() bool {
	if r.Error == nil {
		return false
	}
	if errors.Is(r.Error, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(r.Error, &netErr) && netErr.Timeout()
}

func (r *Response) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s %s: %v", r.Request.Method, r.Request.URL, r.Error)
	}
	return fmt.Sprintf("%s %s %d", r.Request.Method, r.Request.URL, r.StatusCode)
}
