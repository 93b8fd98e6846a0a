package api

import (
	"strconv"
	"strings"
)

// AuthMode selects how an account authenticates against the Cloudflare API.
type AuthMode string

const (
	// AuthToken sends the account's API token as a bearer token.
	AuthToken AuthMode = "token"
	// AuthGlobalKey sends the account's email and global API key.
	AuthGlobalKey AuthMode = "global_key"
)

// Account is a configured set of Cloudflare credentials.
type Account struct {
	Name      string   `json:"name"`
	APIToken  string   `json:"api_token"`
	Email     string   `json:"email,omitempty"`
	AccountID string   `json:"account_id,omitempty"`
	AuthMode  AuthMode `json:"auth_mode,omitempty"`
}

// Zone represents a Cloudflare zone.
type Zone struct {
	ID   string
	Name string
}

// TTLAuto is the TTL value Cloudflare uses for "automatic".
const TTLAuto = 1

// DefaultTTL is used when the API omits a record's TTL.
const DefaultTTL = 300

// Record represents a single DNS record.
type Record struct {
	ID      string
	Type    string
	Name    string
	Content string
	TTL     int
	Proxied bool
}

// Draft is the field set submitted to create or update a record.
type Draft struct {
	Type    string
	Name    string
	Content string
	TTL     int
	Proxied bool
}

// Draft returns the editable fields of r.
func (r Record) Draft() Draft {
	return Draft{
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		TTL:     r.TTL,
		Proxied: r.Proxied,
	}
}

// RecordTypes lists the record types the editor supports, in display order.
var RecordTypes = []string{"A", "AAAA", "CNAME", "TXT", "MX", "NS", "SRV", "CAA", "PTR"}

// IsSupportedType reports whether t (case-insensitive) is in RecordTypes.
func IsSupportedType(t string) bool {
	t = strings.ToUpper(strings.TrimSpace(t))
	for _, rt := range RecordTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// IsProxyEligible reports whether records of type t can be proxied.
func IsProxyEligible(t string) bool {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "A", "AAAA", "CNAME":
		return true
	}
	return false
}

// FormatTTL renders a TTL the way the editor accepts it back.
func FormatTTL(ttl int) string {
	if ttl == TTLAuto {
		return "automatic"
	}
	return strconv.Itoa(ttl)
}
