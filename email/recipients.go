package email

import (
	"errors"
	"regexp"
	"strings"
)

// ErrAddress indicates one or more recipient addresses failed the syntax check.
var ErrAddress = errors.New("invalid email address")

var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ParseRecipients 按 , 或 ; 拆分地址列表，去掉首尾空白并丢弃空项。
func ParseRecipients(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidAddress reports whether s looks like local@domain.tld.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// AddressError lists the addresses that failed validation, in input order.
type AddressError struct {
	Invalid []string
}

func (e *AddressError) Error() string {
	return "Invalid email(s): " + strings.Join(e.Invalid, ", ")
}

// Is lets errors.Is(err, ErrAddress) match.
func (e *AddressError) Is(target error) bool { return target == ErrAddress }

// ValidateRecipients returns an *AddressError naming every invalid address, or nil.
func ValidateRecipients(addrs []string) error {
	var bad []string
	for _, a := range addrs {
		if !ValidAddress(a) {
			bad = append(bad, a)
		}
	}
	if len(bad) > 0 {
		return &AddressError{Invalid: bad}
	}
	return nil
}
