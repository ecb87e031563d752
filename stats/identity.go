package stats

import (
	"errors"
	"net/url"
	"strings"

	"github.com/sanchawla17/Invosight/models"
)

var (
	// ErrInvalidClientKey marks a client key lacking a recognized prefix or
	// with an empty value. Distinguishable from ErrClientNotFound.
	ErrInvalidClientKey = errors.New("invalid client key")
	// ErrClientNotFound means no invoices matched a well-formed client key.
	ErrClientNotFound = errors.New("client not found")
)

const (
	emailKeyPrefix = "email:"
	nameKeyPrefix  = "name:"

	// unknownClient labels invoices whose billTo carries neither email nor name.
	unknownClient = "Unknown"
)

type identityKind int

const (
	identityEmail identityKind = iota
	identityName
)

// ClientIdentity is the derived grouping identity of an invoice's client:
// the lower-cased billing email when present, otherwise the literal client
// name ("Unknown" when that is empty too). Two invoices whose emails differ
// only in case belong to the same client. The wire form produced by Key and
// consumed by ParseClientKey ("email:<addr>" / "name:<literal>") is an
// implicit protocol between the clients list and the detail lookup; both
// sides must agree exactly.
type ClientIdentity struct {
	kind  identityKind
	value string
}

// IdentityFor derives the client identity of an invoice.
func IdentityFor(billTo models.BillTo) ClientIdentity {
	if email := strings.TrimSpace(billTo.Email); email != "" {
		return ClientIdentity{kind: identityEmail, value: strings.ToLower(email)}
	}
	if billTo.ClientName != "" {
		return ClientIdentity{kind: identityName, value: billTo.ClientName}
	}
	return ClientIdentity{kind: identityName, value: unknownClient}
}

// ParseClientKey parses a caller-supplied key. The raw value is URL-decoded
// before prefix matching; a key without a recognized prefix or with an
// empty value yields ErrInvalidClientKey.
func ParseClientKey(raw string) (ClientIdentity, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	if v, ok := strings.CutPrefix(decoded, emailKeyPrefix); ok {
		if v == "" {
			return ClientIdentity{}, ErrInvalidClientKey
		}
		return ClientIdentity{kind: identityEmail, value: strings.ToLower(v)}, nil
	}
	if v, ok := strings.CutPrefix(decoded, nameKeyPrefix); ok {
		if v == "" {
			return ClientIdentity{}, ErrInvalidClientKey
		}
		return ClientIdentity{kind: identityName, value: v}, nil
	}
	return ClientIdentity{}, ErrInvalidClientKey
}

// Key renders the identity in its wire form.
func (id ClientIdentity) Key() string {
	if id.kind == identityEmail {
		return emailKeyPrefix + id.value
	}
	return nameKeyPrefix + id.value
}

// IsEmail reports whether the identity is email-based.
func (id ClientIdentity) IsEmail() bool { return id.kind == identityEmail }

// Value returns the identity's bare value (lower-cased email or literal name).
func (id ClientIdentity) Value() string { return id.value }
