package upload

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// recordingReporter captures diagnostic reports.
type recordingReporter struct {
	mu         sync.Mutex
	reported   []error
	suppressed []error
}

func (r *recordingReporter) ReportException(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = append(r.reported, err)
}

func (r *recordingReporter) ReportExceptionWithSuppress(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppressed = append(r.suppressed, err)
}

func (r *recordingReporter) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reported), len(r.suppressed)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type attempt struct {
	secure bool
	url    string
}

// fakeNetwork records every attempt and answers through handle.
type fakeNetwork struct {
	mu       sync.Mutex
	attempts []attempt
	handle   func(secure bool, r *http.Request) (*http.Response, error)
}

func (n *fakeNetwork) builder() TransportBuilder {
	return func(secure bool, _ Timeouts) *http.Client {
		return &http.Client{
			CheckRedirect: noRedirects,
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				n.mu.Lock()
				n.attempts = append(n.attempts, attempt{secure: secure, url: r.URL.String()})
				n.mu.Unlock()
				if r.Body != nil {
					_, _ = io.Copy(io.Discard, r.Body)
					r.Body.Close()
				}
				return n.handle(secure, r)
			}),
		}
	}
}

func (n *fakeNetwork) Attempts() []attempt {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]attempt{}, n.attempts...)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
