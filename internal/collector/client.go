package collector

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"paperdash/internal/decode"
)

// Fetch results use three disjoint status ranges so logs and the recorder
// can tell the failing layer apart: positive values are HTTP status codes,
// the -256 range is decode failures, the -512 range is network-layer
// failures.
const (
	statusDecodeOffset  = -256
	statusNetworkOffset = -512

	// StatusCircuitOpen means the source's circuit breaker rejected the
	// request; the source is considered down for this cycle.
	StatusCircuitOpen = statusNetworkOffset - 1
	// StatusConnFailed means the transport could not complete the request
	// (dial, TLS handshake, or read failure).
	StatusConnFailed = statusNetworkOffset - 2
)

// IsDecodeStatus reports whether code is in the decode failure range.
func IsDecodeStatus(code int) bool {
	return code <= statusDecodeOffset && code > statusNetworkOffset
}

// IsNetworkStatus reports whether code is in the network failure range.
func IsNetworkStatus(code int) bool { return code <= statusNetworkOffset }

// decodeStatus maps a decode error into the -256 range.
func decodeStatus(err error) int {
	code := decode.Code(err)
	if code == 0 {
		code = decode.CodeSyntax
	}
	return statusDecodeOffset - code
}

// StatusText returns a short phrase for a layered status code.
func StatusText(code int) string {
	switch {
	case code > 0:
		return http.StatusText(code)
	case code == StatusCircuitOpen:
		return "Circuit Open"
	case code == StatusConnFailed:
		return "Connection Failed"
	case IsDecodeStatus(code):
		return "Response Decode Failed"
	default:
		return "Unknown Error"
	}
}

var errServerStatus = errors.New("server-side HTTP status")

// sourceClient is the shared HTTP plumbing for one API source: a client
// that opens a fresh connection per attempt and a circuit breaker that
// declares the source down after repeated transport or server failures.
type sourceClient struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func newSourceClient(name string, timeout time.Duration, proxyURL string) *sourceClient {
	// No connection reuse across attempts; each retry tears down and
	// redials, as the device build did to bound per-session memory.
	transport := &http.Transport{DisableKeepAlives: true}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &sourceClient{
		name: name,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 2,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// doRequest executes one attempt through the circuit breaker. On success
// the response and its HTTP status are returned; on a network-layer
// failure the response is nil and the status is in the -512 range.
func (sc *sourceClient) doRequest(req *http.Request) (*http.Response, int) {
	out, err := sc.breaker.Execute(func() (interface{}, error) {
		resp, doErr := sc.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// Rate limiting and 5xx count against the breaker; the response
		// is still handed back so the retry loop sees the real status.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return resp, fmt.Errorf("%w: %d", errServerStatus, resp.StatusCode)
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, StatusCircuitOpen
	}
	resp, _ := out.(*http.Response)
	if resp == nil {
		return nil, StatusConnFailed
	}
	return resp, resp.StatusCode
}

// getJSON drives the retry loop for one endpoint: up to attempts tries, a
// fresh connection each time, early exit on the first success. HTTP and
// decode failures are retried; network-layer failures abort the remaining
// attempts immediately. The final layered status code is returned.
func (sc *sourceClient) getJSON(uri string, header map[string]string, attempts int, parse func(io.Reader) error) int {
	status := 0
	for attempt := 0; attempt < attempts; attempt++ {
		req, err := http.NewRequest(http.MethodGet, uri, nil)
		if err != nil {
			return StatusConnFailed
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range header {
			req.Header.Set(k, v)
		}
		req.Close = true

		resp, st := sc.doRequest(req)
		status = st
		if resp == nil {
			log.Printf("[WARN] %s: %d %s, aborting attempts", sc.name, st, StatusText(st))
			return st
		}

		if st == http.StatusOK {
			parseErr := parse(resp.Body)
			resp.Body.Close()
			if parseErr == nil {
				return http.StatusOK
			}
			status = decodeStatus(parseErr)
			log.Printf("[WARN] %s attempt %d/%d: %d %s: %v",
				sc.name, attempt+1, attempts, status, StatusText(status), parseErr)
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		log.Printf("[WARN] %s attempt %d/%d: %d %s",
			sc.name, attempt+1, attempts, st, StatusText(st))
	}
	return status
}

// redactKey replaces the API key in a request URI with a placeholder so
// diagnostic output never exposes it.
func redactKey(uri, key string) string {
	if key == "" {
		return uri
	}
	return strings.ReplaceAll(uri, key, "{API key}")
}
