package upload

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	schemeHTTPS = "https://"
	schemeHTTP  = "http://"
)

// Endpoint identifies the collection service and the credentials used
// against it. It is a value; clients copy it at construction.
type Endpoint struct {
	// URL is the upload URL, normally https.
	URL string

	// AppID identifies the uploading application.
	AppID string

	// APIKey is the user's key for the collection service.
	APIKey string
}

// Validate checks that the endpoint can be used for uploads.
func (e Endpoint) Validate() error {
	if e.URL == "" {
		return errors.New("upload: endpoint url is required")
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("upload: parse endpoint url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("upload: unsupported endpoint scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("upload: endpoint url has no host")
	}
	if e.APIKey == "" {
		return errors.New("upload: api key is required")
	}
	return nil
}

// ClearTextURL returns the endpoint URL with an https scheme downgraded to http.
// Other URLs are returned unchanged.
func (e Endpoint) ClearTextURL() string {
	if len(e.URL) >= len(schemeHTTPS) && strings.EqualFold(e.URL[:len(schemeHTTPS)], schemeHTTPS) {
		return schemeHTTP + e.URL[len(schemeHTTPS):]
	}
	return e.URL
}

// String renders the endpoint without its API key.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s (app %s)", e.URL, e.AppID)
}
