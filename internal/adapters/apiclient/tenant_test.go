package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantFromHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"shop1.retail.uz", "shop1"},
		{"shop1.retail.uz:8443", "shop1"},
		{"a.b.c.d", "a"},
		{"retail.uz", ""},
		{"localhost", ""},
		{"localhost:3000", ""},
		{"192.168.1.10", ""},
		{"192.168.1.10:8080", ""},
		{"[::1]:8080", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, TenantFromHost(tt.host))
		})
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail first", `{"detail":"d","message":"m","error":"e"}`, "d"},
		{"message second", `{"message":"m","error":"e"}`, "m"},
		{"error last", `{"error":"e"}`, "e"},
		{"non-string skipped", `{"error":true,"message":"Internal Server Error"}`, "Internal Server Error"},
		{"blank skipped", `{"detail":"  ","error":"e"}`, "e"},
		{"no known field", `{"code":42}`, DefaultErrorMessage},
		{"not json", `<html>502</html>`, DefaultErrorMessage},
		{"empty", ``, DefaultErrorMessage},
		{"array body", `["x"]`, DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage([]byte(tt.body)))
		})
	}
}
