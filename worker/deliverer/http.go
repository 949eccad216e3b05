package deliverer

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/constants"
)

// HTTPDeliverer delivers via HTTP
type HTTPDeliverer struct {
	defaultTimeout time.Duration
	client         *http.Client
}

func NewHTTPDeliverer(cfg *modules.DeliveryConfig) *HTTPDeliverer {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if len(cfg.ACL.Deny) > 0 {
		transport.DialContext = aclDialer(NewACL(AclOptions{Rules: cfg.ACL.Deny}))
	}
	return &HTTPDeliverer{
		defaultTimeout: time.Duration(cfg.Timeout) * time.Millisecond,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// aclDialer rejects denied hostnames before resolving and denied addresses
// once resolved.
func aclDialer(acl *ACL) func(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, c syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			ip, err := netip.ParseAddr(host)
			if err != nil {
				return err
			}
			if !acl.Allow("", ip) {
				return ErrRequestDenied
			}
			return nil
		},
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		if _, err := netip.ParseAddr(host); err != nil && !acl.AllowHost(host) {
			return nil, ErrRequestDenied
		}
		return dialer.DialContext(ctx, network, addr)
	}
}

func timing(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, req *Request) (res *Response) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = d.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res = &Response{
		Request: req,
	}

	request, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Payload))
	if err != nil {
		res.Error = err
		return
	}

	for _, header := range constants.DefaultDelivererRequestHeaders {
		request.Header.Set(header.Name, header.Value)
	}
	for name, value := range req.Headers {
		request.Header.Set(name, value)
	}

	res.Latency = timing(func() {
		response, err := d.client.Do(request)
		if err != nil {
			res.Error = err
			return
		}
		defer response.Body.Close()
		res.StatusCode = response.StatusCode
		res.Header = response.Header

		body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
		res.ResponseBody = body
		if err != nil {
			res.Error = errors.Wrap(err, "read response body")
		}
	})

	return
}
