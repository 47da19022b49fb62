package apiclient

import (
	"net"
	"strings"
)

// TenantFromHost derives the tenant label from a request host.
// Hosts with more than two labels carry the tenant in the first one
// (shop1.retail.uz -> shop1). IP literals never carry a tenant.
func TenantFromHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return ""
	}
	return labels[0]
}
