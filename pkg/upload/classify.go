package upload

import (
	"fmt"
	"net/http"
	"strings"
)

// Response bodies defined by the collection service.
const (
	bodySuccess      = "0,OK"
	bodyInvalidToken = "Err: Invalid token"
)

// ResponseError describes a server response that could not be mapped to a
// known protocol result.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected upload response %d: %q", e.StatusCode, e.Body)
}

// Classify maps a server response to an Outcome. The body is compared after
// trimming surrounding whitespace. A 400 and any response the protocol does
// not define are passed to reporter (which may be nil); nothing else is.
//
// Rules are evaluated in order and the first match wins.
func Classify(statusCode int, body string, reporter Reporter) Outcome {
	body = strings.TrimSpace(body)

	if statusCode == http.StatusOK && strings.EqualFold(body, bodySuccess) {
		return Success
	}
	if statusCode >= 500 && statusCode <= 599 {
		return ServerError
	}
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden ||
		strings.EqualFold(body, bodyInvalidToken) {
		return InvalidAPIKey
	}
	if statusCode == http.StatusBadRequest {
		report(reporter, &ResponseError{StatusCode: statusCode, Body: body})
		return ConfigurationError
	}
	// Captive portals answer with 302; that is not worth a report.
	if statusCode != http.StatusFound {
		report(reporter, &ResponseError{StatusCode: statusCode, Body: body})
	}
	return ConnectionError
}

func report(r Reporter, err error) {
	if r != nil {
		r.ReportException(err)
	}
}
