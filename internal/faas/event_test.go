package faas

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		mode    BodyMode
		want    interface{}
		wantHas bool
	}{
		{"object", `{"a": 1}`, BodyModeLenient, map[string]interface{}{"a": json.Number("1")}, true},
		{"array", `[true]`, BodyModeStrict, []interface{}{true}, true},
		{"scalar", `"text"`, BodyModeStrict, "text", true},
		{"null", `null`, BodyModeStrict, nil, true},
		{"empty", ``, BodyModeLenient, nil, false},
		{"whitespace", " \n\t", BodyModeStrict, nil, false},
		{"invalid lenient", `{not json`, BodyModeLenient, "{not json", true},
		{"invalid strict", `{not json`, BodyModeStrict, nil, false},
		{"trailing data lenient", `{} {}`, BodyModeLenient, "{} {}", true},
		{"trailing data strict", `1 2`, BodyModeStrict, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, has := DecodeBody([]byte(tt.raw), tt.mode)
			if has != tt.wantHas {
				t.Errorf("HasBody = %v, want %v", has, tt.wantHas)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Body = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseBodyMode(t *testing.T) {
	tests := []struct {
		in      string
		want    BodyMode
		wantErr bool
	}{
		{"", BodyModeLenient, false},
		{"lenient", BodyModeLenient, false},
		{" STRICT ", BodyModeStrict, false},
		{"loose", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBodyMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBodyMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewEvent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/items/7?tag=a&tag=b&empty=", nil)
	req.Header.Set("X-Custom-Header", "value")
	req.Header.Add("Accept", "text/plain")
	req.Header.Add("Accept", "application/json")

	event := NewEvent(req, []byte(`{"n": 2}`), BodyModeLenient)

	if event.Method != http.MethodPatch || event.Path != "/items/7" {
		t.Errorf("Unexpected method/path: %s %s", event.Method, event.Path)
	}
	if event.Header("x-custom-header") != "value" {
		t.Errorf("Header lookup must be case-insensitive, got %q", event.Header("x-custom-header"))
	}
	if got := event.Headers.Values("Accept"); len(got) != 2 {
		t.Errorf("Expected repeated headers to be kept, got %v", got)
	}
	if got := event.Query["tag"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected repeated query keys, got %v", got)
	}
	if !event.Query.Has("empty") {
		t.Error("Expected empty query value to be present")
	}
	if !event.HasBody || string(event.RawBody) != `{"n": 2}` {
		t.Errorf("Unexpected body: %v %q", event.HasBody, event.RawBody)
	}

	// The event owns its headers.
	req.Header.Set("X-Custom-Header", "changed")
	if event.Header("X-Custom-Header") != "value" {
		t.Error("Event headers must not alias the request")
	}
}

func TestContextFactory(t *testing.T) {
	fctx := ContextFactory{}.New("req-1")
	if fctx.Hostname != DefaultHostname || fctx.RequestID != "req-1" {
		t.Errorf("Unexpected default context: %+v", fctx)
	}

	fctx = ContextFactory{Hostname: "fn-1", Environment: "production", FunctionName: "echo"}.New("")
	if fctx.Hostname != "fn-1" || fctx.Environment != "production" || fctx.FunctionName != "echo" {
		t.Errorf("Unexpected context: %+v", fctx)
	}
}

func TestResultStatus(t *testing.T) {
	var nilResult *Result
	if nilResult.Status() != http.StatusOK {
		t.Error("Nil result should be 200")
	}
	if (&Result{}).Status() != http.StatusOK {
		t.Error("Zero status should be 200")
	}
	if JSON(http.StatusCreated, nil).Status() != http.StatusCreated {
		t.Error("Explicit status should be kept")
	}
}
