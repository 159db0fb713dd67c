package mailer

import (
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/net/idna"
)

// Address is an email address with an optional display name.
type Address struct {
	Email string
	Name  string
}

// NewAddress creates an Address from an email and an optional display name.
// Surrounding whitespace is trimmed from both.
func NewAddress(email, name string) Address {
	return Address{
		Email: strings.TrimSpace(email),
		Name:  strings.TrimSpace(name),
	}
}

// ParseAddress parses a single RFC 5322 address such as
// "user@example.com" or "Jane Doe <jane@example.com>".
func ParseAddress(s string) (Address, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return Address{Email: parsed.Address, Name: parsed.Name}, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// ParseAddressList parses a comma-separated list of addresses.
// An empty or whitespace-only string yields an empty list.
func ParseAddressList(s string) ([]Address, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parsed, err := mail.ParseAddressList(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}

	result := make([]Address, len(parsed))
	for i, p := range parsed {
		result[i] = Address{Email: p.Address, Name: p.Name}
	}
	return result, nil
}

// IsZero reports whether the address has no email.
func (a Address) IsZero() bool {
	return a.Email == ""
}

// Encoded returns the address in its transport form: the domain is converted
// to ASCII (punycode) and the local part is left untouched.
// If the domain is not a valid IDN the address is returned unchanged.
func (a Address) Encoded() string {
	at := strings.LastIndexByte(a.Email, '@')
	if at < 0 {
		return a.Email
	}

	local, domain := a.Email[:at], a.Email[at+1:]
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return a.Email
	}
	return local + "@" + ascii
}

// String formats the address in RFC 5322 form.
// Returns just the email if there is no display name.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// key is the identity used to deduplicate recipients.
func (a Address) key() string {
	return strings.ToLower(a.Encoded())
}
