package capture

import (
	"testing"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/encoder"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		reason  Reason
		ignored bool
		id      string
	}{
		{"not json", `hello`, ReasonMalformed, true, ""},
		{"json array", `[1,2]`, ReasonMalformed, true, ""},
		{"other action", `{"action":"scroll"}`, ReasonNotCapture, true, ""},
		{"no action", `{"url":"x"}`, ReasonNotCapture, true, ""},
		{"action not a string", `{"action":7}`, ReasonNotCapture, true, ""},
		{"wrong field type", `{"action":"capture","id":"a1","formField":3}`, ReasonInvalidField, false, "a1"},
		{"bad encoding", `{"action":"capture","id":"a2","encoding":"gif"}`, ReasonBadEncoding, false, "a2"},
		{"relative endpoint", `{"action":"capture","serverEndpoint":"/upload"}`, ReasonBadEndpoint, false, ""},
		{"ftp endpoint", `{"action":"capture","serverEndpoint":"ftp://h/x"}`, ReasonBadEndpoint, false, ""},
		{"bad payload", `{"action":"capture","payload":"svg"}`, ReasonBadPayload, false, ""},
		{"minimal", `{"action":"capture"}`, "", false, ""},
		{"full", `{"action":"capture","id":"r1","url":"https://page.test","encoding":"webp","quality":0.3,
			"headers":{"a":"b"},"uploadToken":"T","serverEndpoint":"https://h.test/up","formField":"img",
			"dataType":"blob","payload":"binary"}`, "", false, "r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse([]byte(tt.msg))
			if p.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", p.Reason, tt.reason)
			}
			if p.Ignored() != tt.ignored {
				t.Errorf("Ignored() = %v, want %v", p.Ignored(), tt.ignored)
			}
			if p.ID != tt.id {
				t.Errorf("ID = %q, want %q", p.ID, tt.id)
			}
			if (p.Request != nil) != (tt.reason == "") {
				t.Errorf("Request = %v, want set only when valid", p.Request)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	p := Parse([]byte(`{"action":"capture","encoding":"jpg","uploadToken":"T",
		"serverEndpoint":"http://localhost:9/up","formField":"img","dataType":"base64","quality":0.1}`))
	req := p.Request
	if req == nil {
		t.Fatalf("Parse() rejected valid command: %s", p.Reason)
	}

	if req.EffectiveEncoding() != encoder.JPG {
		t.Errorf("EffectiveEncoding() = %q, want jpg", req.EffectiveEncoding())
	}
	if req.EffectiveFormField() != "img" {
		t.Errorf("EffectiveFormField() = %q, want img", req.EffectiveFormField())
	}
	if req.UploadToken != "T" || req.DataType != "base64" || string(req.Quality) != "0.1" {
		t.Errorf("fields = %+v", req)
	}
	if req.WantsText() {
		t.Error("WantsText() = true, want false")
	}
}

func TestParseIgnoresUnusedFieldTypes(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"headers with list values", `{"action":"capture","headers":{"Accept":["image/*"]}}`},
		{"headers as string", `{"action":"capture","headers":"x"}`},
		{"quality as string", `{"action":"capture","quality":"0.9"}`},
		{"quality as object", `{"action":"capture","quality":{"v":1}}`},
		{"both", `{"action":"capture","headers":{"Accept":["image/*"]},"quality":"0.9"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse([]byte(tt.msg))
			if p.Request == nil {
				t.Fatalf("Parse() reason = %q (%s), want a request", p.Reason, p.Detail)
			}
		})
	}
}

func TestRequestDefaults(t *testing.T) {
	req := &Request{Action: ActionCapture}

	if req.EffectiveEncoding() != encoder.PNG {
		t.Errorf("EffectiveEncoding() = %q, want png", req.EffectiveEncoding())
	}
	if req.EffectiveFormField() != DefaultFormField {
		t.Errorf("EffectiveFormField() = %q, want %q", req.EffectiveFormField(), DefaultFormField)
	}

	req.Payload = PayloadText
	if !req.WantsText() {
		t.Error("WantsText() = false, want true")
	}
}
