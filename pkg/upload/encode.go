package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// Form field names of the upload API.
const (
	FieldAPIKey   = "key"
	FieldAppID    = "appId"
	FieldDataFile = "datafile"

	// ContentTypeCSV is the content type of the datafile part.
	ContentTypeCSV = "text/csv"
)

// DefaultFilePrefix starts the name of every uploaded file.
const DefaultFilePrefix = "towership"

// EncodedRequest is a ready-to-send multipart body.
type EncodedRequest struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Filename returns the datafile name for an upload started at now.
func Filename(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return prefix + "_measurements_" + strconv.FormatInt(now.UnixMilli(), 10) + ".csv"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode builds the multipart form for one batch.
func Encode(e Endpoint, batch string, filename string) (EncodedRequest, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField(FieldAPIKey, e.APIKey); err != nil {
		return EncodedRequest{}, fmt.Errorf("write %s field: %w", FieldAPIKey, err)
	}
	if err := writer.WriteField(FieldAppID, e.AppID); err != nil {
		return EncodedRequest{}, fmt.Errorf("write %s field: %w", FieldAppID, err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FieldDataFile, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", ContentTypeCSV)
	part, err := writer.CreatePart(h)
	if err != nil {
		return EncodedRequest{}, fmt.Errorf("create %s part: %w", FieldDataFile, err)
	}
	if _, err := part.Write([]byte(batch)); err != nil {
		return EncodedRequest{}, fmt.Errorf("write %s part: %w", FieldDataFile, err)
	}

	if err := writer.Close(); err != nil {
		return EncodedRequest{}, fmt.Errorf("finalize multipart: %w", err)
	}

	return EncodedRequest{
		Body:        body.Bytes(),
		ContentType: writer.FormDataContentType(),
		Filename:    filename,
	}, nil
}
