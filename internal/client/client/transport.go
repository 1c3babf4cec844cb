package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/logging"
)

const (
	DefaultConnectTimeout = 3 * time.Second
	DefaultReadTimeout    = 5 * time.Second

	// maxResponseBody caps what ReadBody will buffer.
	maxResponseBody = 4 << 20
)

var errDisconnected = errors.New("connection closed by client")

// Options configures a Factory. Zero timeouts take the defaults.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// Transport overrides the HTTP transport, e.g. to trust a test server.
	Transport http.RoundTripper
}

// Factory opens Connections with a shared, pooled HTTP client.
type Factory struct {
	client         *http.Client
	connectTimeout time.Duration
	readTimeout    time.Duration
	log            logging.Logger
}

// NewFactory returns a Factory configured from opts.
func NewFactory(opts Options, log logging.Logger) *Factory {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}

	rt := opts.Transport
	if rt == nil {
		rt = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   opts.ConnectTimeout,
			ResponseHeaderTimeout: opts.ReadTimeout,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          4,
		}
	}

	return &Factory{
		client:         &http.Client{Transport: rt},
		connectTimeout: opts.ConnectTimeout,
		readTimeout:    opts.ReadTimeout,
		log:            log,
	}
}

// Open starts a POST to rawURL with a body of unknown length.
func (f *Factory) Open(ctx context.Context, rawURL string) (*Connection, error) {
	return f.OpenSized(ctx, rawURL, -1)
}

// OpenSized starts a POST whose body will be exactly contentLength bytes
// (-1 when unknown). The request is in flight when OpenSized returns; the
// caller streams the body with Write and must call Disconnect.
func (f *Factory) OpenSized(ctx context.Context, rawURL string, contentLength int64) (*Connection, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), pr)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	req.ContentLength = contentLength
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "Keep-Alive")

	// The first write also waits for dialing and the TLS handshake.
	c := &Connection{
		url:          u.Redacted(),
		pw:           pw,
		cancel:       cancel,
		done:         make(chan struct{}),
		writeTimeout: 2*f.connectTimeout + f.readTimeout,
		readTimeout:  f.readTimeout,
	}

	go func() {
		defer close(c.done)
		resp, err := f.client.Do(req)
		c.resp, c.err = resp, err
		// Unblock a writer the transport will never read from again.
		if err != nil {
			_ = pr.CloseWithError(err)
		} else {
			_ = pr.CloseWithError(io.ErrClosedPipe)
		}
	}()

	f.log.Debug(ctx, "connection opened", "url", c.url)
	return c, nil
}

// ValidateURL reports ErrMalformedURL for a URL Open would reject.
func ValidateURL(rawURL string) error {
	_, err := parseURL(rawURL)
	return err
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedURL, rawURL)
	}
	return u, nil
}

// Connection is one in-flight POST.
type Connection struct {
	url          string
	pw           *io.PipeWriter
	cancel       context.CancelFunc
	done         chan struct{}
	writeTimeout time.Duration
	readTimeout  time.Duration

	resp *http.Response
	err  error

	// bodyClosed is set once StatusCode or Disconnect closed the body.
	bodyClosed atomic.Bool
	closeOnce  sync.Once
}

// Write streams p into the request body. A write that makes no progress
// within the read timeout aborts the request. If the server answered
// before taking the whole body, Write returns ErrEarlyResponse and
// StatusCode reports the answer.
func (c *Connection) Write(p []byte) (int, error) {
	t := time.AfterFunc(c.writeTimeout, c.cancel)
	n, err := c.pw.Write(p)
	t.Stop()
	c.writeTimeout = c.readTimeout
	if err != nil {
		if !c.bodyClosed.Load() && c.answered() {
			return n, ErrEarlyResponse
		}
		return n, fmt.Errorf("%w: write body: %w", ErrNetwork, err)
	}
	return n, nil
}

// answered waits up to the read timeout for the request to finish and
// reports whether it ended with a response.
func (c *Connection) answered() bool {
	t := time.NewTimer(c.readTimeout)
	defer t.Stop()
	select {
	case <-c.done:
	case <-t.C:
		return false
	}
	return c.err == nil && c.resp != nil
}

// WriteString is Write for text fragments.
func (c *Connection) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// StatusCode finishes the body and waits for the response status.
func (c *Connection) StatusCode() (int, error) {
	c.bodyClosed.Store(true)
	_ = c.pw.Close()
	<-c.done
	if c.err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNetwork, c.err)
	}
	return c.resp.StatusCode, nil
}

// ReadBody reads the response body. It must follow StatusCode.
func (c *Connection) ReadBody() ([]byte, error) {
	if _, err := c.StatusCode(); err != nil {
		return nil, err
	}
	t := time.AfterFunc(c.readTimeout, c.cancel)
	defer t.Stop()

	b, err := io.ReadAll(io.LimitReader(c.resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	return b, nil
}

// Disconnect aborts the request if it is still running and releases the
// connection. It is safe to call more than once.
func (c *Connection) Disconnect() {
	c.closeOnce.Do(func() {
		c.bodyClosed.Store(true)
		_ = c.pw.CloseWithError(errDisconnected)
		select {
		case <-c.done:
		default:
			c.cancel()
			<-c.done
		}
		if c.resp != nil {
			_ = c.resp.Body.Close()
		}
		c.cancel()
	})
}

// Response is the outcome of PostForm.
type Response struct {
	StatusCode int
	Body       []byte
}

// PostForm sends body in one request. The response body is read only when
// readBody is set and the status is 200.
func (f *Factory) PostForm(ctx context.Context, rawURL, body string, readBody bool) (Response, error) {
	conn, err := f.OpenSized(ctx, rawURL, int64(len(body)))
	if err != nil {
		return Response{}, err
	}
	defer conn.Disconnect()

	if _, err := conn.WriteString(body); err != nil && !errors.Is(err, ErrEarlyResponse) {
		return Response{}, err
	}
	code, err := conn.StatusCode()
	if err != nil {
		return Response{}, err
	}
	resp := Response{StatusCode: code}
	if readBody && code == http.StatusOK {
		if resp.Body, err = conn.ReadBody(); err != nil {
			return resp, err
		}
	}
	return resp, nil
}
