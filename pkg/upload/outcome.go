package upload

// Outcome is the result of one upload call.
type Outcome int

const (
	// Success means the server accepted the batch.
	Success Outcome = iota

	// Failure is an I/O failure that could not be classified further.
	Failure

	// ConnectionError covers timeouts, refused connections, redirects and
	// responses the protocol does not define.
	ConnectionError

	// ServerError means the service answered with a 5xx status.
	ServerError

	// InvalidAPIKey means the credentials were rejected.
	InvalidAPIKey

	// ConfigurationError means the server rejected the request as malformed.
	ConfigurationError
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case ConnectionError:
		return "ConnectionError"
	case ServerError:
		return "ServerError"
	case InvalidAPIKey:
		return "InvalidApiKey"
	case ConfigurationError:
		return "ConfigurationError"
	default:
		return "Unknown"
	}
}

// Retryable reports whether the same batch may succeed if sent again later.
func (o Outcome) Retryable() bool {
	return o == Failure || o == ConnectionError || o == ServerError
}

// Fatal reports whether further uploads are pointless until the
// configuration changes.
func (o Outcome) Fatal() bool {
	return o == InvalidAPIKey
}
