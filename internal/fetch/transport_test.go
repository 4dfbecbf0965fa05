package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "no proxy", address: ""},
		{name: "valid proxy", address: "127.0.0.1:9050"},
		{name: "missing port", address: "127.0.0.1", wantErr: true},
		{name: "empty host", address: ":9050", wantErr: true},
		{name: "port out of range", address: "127.0.0.1:70000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var opts []TransportOption
			if tt.address != "" {
				opts = append(opts, WithProxy(tt.address))
			}
			tr, err := NewTransport(opts...)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.ProxyAddress() != tt.address {
				t.Errorf("ProxyAddress() = %q, expected %q", tr.ProxyAddress(), tt.address)
			}
		})
	}
}

func TestTransportCredentials(t *testing.T) {
	t.Parallel()

	gotCookie := make(chan string, 1)
	gotHeader := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotCookie <- r.Header.Get("Cookie")
		gotHeader <- r.Header.Get("X-Token")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	tr, err := NewTransport(
		WithDefaultCredentials(Credentials{Cookie: "a=1", Headers: map[string]string{"X-Token": "default"}}),
		WithSiteCredentials(req.URL.Hostname(), Credentials{Cookie: "b=2", Headers: map[string]string{"X-Token": "site"}}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := tr.HTTPClient().Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if c := <-gotCookie; c != "b=2" {
		t.Errorf("Cookie = %q, expected %q", c, "b=2")
	}
	if h := <-gotHeader; h != "site" {
		t.Errorf("X-Token = %q, expected %q", h, "site")
	}
}

func TestMIME(t *testing.T) {
	t.Parallel()

	if !IsHTML("text/html; charset=UTF-8") {
		t.Error("IsHTML(text/html) = false")
	}
	if IsHTML("application/xhtml+xml") {
		t.Error("IsHTML(application/xhtml+xml) = true")
	}
	if !IsImage("image/svg+xml") {
		t.Error("IsImage(image/svg+xml) = false")
	}
	if IsImage("text/plain") {
		t.Error("IsImage(text/plain) = true")
	}
}
