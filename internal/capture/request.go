package capture

import (
	"encoding/json"
	"net/url"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/encoder"
)

// Request is one inbound capture command. It is consumed once.
type Request struct {
	ID             string `json:"id,omitempty"`
	Action         string `json:"action"`
	URL            string `json:"url,omitempty"`
	Encoding       string `json:"encoding,omitempty"`
	UploadToken    string `json:"uploadToken,omitempty"`
	ServerEndpoint string `json:"serverEndpoint,omitempty"`
	FormField      string `json:"formField,omitempty"`
	DataType       string `json:"dataType,omitempty"`
	Payload        string `json:"payload,omitempty"`

	// Kept verbatim and never interpreted, so any JSON value is accepted.
	Quality json.RawMessage `json:"quality,omitempty"`
	Headers json.RawMessage `json:"headers,omitempty"`
}

// EffectiveEncoding returns the requested format, PNG when none is given.
func (r *Request) EffectiveEncoding() encoder.Format {
	if r.Encoding == "" {
		return encoder.DefaultFormat
	}
	return encoder.Format(r.Encoding)
}

// EffectiveFormField returns the multipart field name.
func (r *Request) EffectiveFormField() string {
	if r.FormField == "" {
		return DefaultFormField
	}
	return r.FormField
}

// WantsText reports whether the caller asked for a data URL instead of a blob.
func (r *Request) WantsText() bool {
	return r.Payload == PayloadText
}

// Reason explains why a message did not produce a Request.
type Reason string

const (
	ReasonMalformed    Reason = "malformed message"
	ReasonNotCapture   Reason = "not a capture command"
	ReasonInvalidField Reason = "invalid field"
	ReasonBadEncoding  Reason = "unsupported encoding"
	ReasonBadEndpoint  Reason = "invalid server endpoint"
	ReasonBadPayload   Reason = "unsupported payload"
)

// Parsed is the tagged result of Parse: exactly one of Request and Reason is set.
type Parsed struct {
	Request *Request
	Reason  Reason
	ID      string // correlation id, when the message carried one
	Detail  string
}

// Ignored reports whether the message should be dropped without a trace.
func (p Parsed) Ignored() bool {
	return p.Reason == ReasonMalformed || p.Reason == ReasonNotCapture
}

// Parse validates an inbound message.
func Parse(data []byte) Parsed {
	var envelope struct {
		Action any `json:"action"`
		ID     any `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Parsed{Reason: ReasonMalformed}
	}
	if action, _ := envelope.Action.(string); action != ActionCapture {
		return Parsed{Reason: ReasonNotCapture}
	}
	id, _ := envelope.ID.(string)

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Parsed{Reason: ReasonInvalidField, ID: id, Detail: err.Error()}
	}

	if req.Encoding != "" {
		if _, ok := encoder.ParseFormat(req.Encoding); !ok {
			return Parsed{Reason: ReasonBadEncoding, ID: id, Detail: req.Encoding}
		}
	}
	if req.ServerEndpoint != "" && !validEndpoint(req.ServerEndpoint) {
		return Parsed{Reason: ReasonBadEndpoint, ID: id, Detail: req.ServerEndpoint}
	}
	switch req.Payload {
	case "", PayloadBinary, PayloadText:
	default:
		return Parsed{Reason: ReasonBadPayload, ID: id, Detail: req.Payload}
	}

	return Parsed{Request: &req, ID: id}
}

func validEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
