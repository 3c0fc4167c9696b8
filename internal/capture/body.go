package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/encoder"
)

// Payload is the encoded image: a binary blob or a textual data URL.
type Payload struct {
	Blob    *encoder.Blob
	DataURL string
}

// IsBinary reports whether the payload is a blob.
func (p Payload) IsBinary() bool { return p.Blob != nil }

// Size returns the payload length in bytes.
func (p Payload) Size() int {
	if p.Blob != nil {
		return p.Blob.Size()
	}
	return len(p.DataURL)
}

// MIME returns the image type the payload carries.
func (p Payload) MIME() string {
	if p.Blob != nil {
		return p.Blob.Type
	}
	if rest, ok := strings.CutPrefix(p.DataURL, "data:"); ok {
		if i := strings.IndexAny(rest, ";,"); i >= 0 {
			return rest[:i]
		}
	}
	return ""
}

// Body is a request body ready to send once.
type Body struct {
	Data        []byte
	ContentType string
}

// textBody is the JSON document for textual payloads.
type textBody struct {
	ImageData string `json:"imageData"`
	DataType  string `json:"dataType,omitempty"`
}

// fieldEscaper encodes a field name for a quoted header parameter the way
// browsers encode FormData names.
var fieldEscaper = strings.NewReplacer("\\", "\\\\", `"`, "%22", "\r", "%0D", "\n", "%0A")

// BuildBody builds the upload body: a one-field multipart form for a blob,
// a JSON text document for a data URL. It has no side effects.
func BuildBody(req *Request, p Payload) (Body, error) {
	if p.IsBinary() {
		return buildMultipart(req.EffectiveFormField(), p.Blob)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(textBody{ImageData: p.DataURL, DataType: req.DataType}); err != nil {
		return Body{}, fmt.Errorf("encode json body: %w", err)
	}
	return Body{Data: bytes.TrimSuffix(buf.Bytes(), []byte("\n")), ContentType: TextContentType}, nil
}

func buildMultipart(field string, blob *encoder.Blob) (Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldEscaper.Replace(field), BlobFilename))
	h.Set("Content-Type", blob.Type)

	part, err := w.CreatePart(h)
	if err != nil {
		return Body{}, fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return Body{}, fmt.Errorf("write part: %w", err)
	}
	if err := w.Close(); err != nil {
		return Body{}, fmt.Errorf("close multipart: %w", err)
	}
	return Body{Data: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}
