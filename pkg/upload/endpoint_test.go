package upload

import "testing"

func TestEndpoint_ClearTextURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.org/upload", "http://example.org/upload"},
		{"HTTPS://example.org/upload", "http://example.org/upload"},
		{"http://example.org/upload", "http://example.org/upload"},
		{"https://example.org/https://x", "http://example.org/https://x"},
	}
	for _, tt := range tests {
		e := Endpoint{URL: tt.in}
		if got := e.ClearTextURL(); got != tt.want {
			t.Errorf("ClearTextURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEndpoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		e       Endpoint
		wantErr bool
	}{
		{"valid", Endpoint{URL: "https://example.org/upload", AppID: "a", APIKey: "k"}, false},
		{"missing url", Endpoint{APIKey: "k"}, true},
		{"bad scheme", Endpoint{URL: "ftp://example.org", APIKey: "k"}, true},
		{"no host", Endpoint{URL: "https:///upload", APIKey: "k"}, true},
		{"missing key", Endpoint{URL: "https://example.org/upload"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.e.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEndpoint_StringHidesKey(t *testing.T) {
	e := Endpoint{URL: "https://example.org/upload", AppID: "app", APIKey: "secret"}
	if s := e.String(); s != "https://example.org/upload (app app)" {
		t.Errorf("String() = %q", s)
	}
}
