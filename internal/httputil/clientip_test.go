package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded-for wins",
			xff:        "203.0.113.9, 10.0.0.1",
			realIP:     "198.51.100.2",
			remoteAddr: "192.0.2.1:4321",
			want:       "203.0.113.9",
		},
		{
			name:       "real-ip fallback",
			realIP:     "198.51.100.2",
			remoteAddr: "192.0.2.1:4321",
			want:       "198.51.100.2",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.1:4321",
			want:       "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
