package rediskey

import "fmt"

// License keys (global convention across binaries)
const (
	LicensePrefix      = "license"
	TokenPrefix        = "token"
	BillingEventPrefix = "billing:event"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildLicenseKey returns "license:{identifier}"
func BuildLicenseKey(identifier string) string {
	return NamespaceKey(LicensePrefix, identifier)
}

// BuildTokenKey returns "token:{token}"
func BuildTokenKey(token string) string {
	return NamespaceKey(TokenPrefix, token)
}

// BuildBillingEventKey returns "billing:event:{eventID}"
func BuildBillingEventKey(eventID string) string {
	return NamespaceKey(BillingEventPrefix, eventID)
}
