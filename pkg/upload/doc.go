// Package upload implements the client side of the OpenCelliD-style
// measurement upload protocol.
//
// A Client posts one CSV batch per call as a multipart form with the
// fields key, appId and datafile, and reduces whatever happens on the
// wire to a single Outcome:
//
//	client := upload.New(upload.Endpoint{
//	    URL:    "https://opencellid.org/measure/uploadCsv",
//	    AppID:  "towership",
//	    APIKey: apiKey,
//	}, upload.WithLogger(logger), upload.WithReporter(reporter))
//
//	switch client.Upload(ctx, batch) {
//	case upload.Success:
//	    // delete the batch
//	case upload.InvalidAPIKey:
//	    // stop until the key is fixed
//	default:
//	    // keep the batch, try again later
//	}
//
// # Transport fallback
//
// Uploads are encrypted by default. When the local TLS stack cannot
// negotiate with the server at all (no common protocol version or cipher
// suite), the client trips its Fallback and repeats the same request once
// over plain HTTP. A tripped Fallback never resets; share one Fallback
// between clients to make the downgrade process-wide.
//
// # Diagnostics
//
// Server responses that indicate a contract mismatch and unexpected I/O
// failures are handed to a Reporter. Ordinary network unavailability
// (timeouts, refused connections, captive-portal redirects) is not.
//
// # Version
//
// See version.go for the version sent in the User-Agent header.
package upload
