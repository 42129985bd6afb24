// Package proposal holds the parsing pipeline shared by the serving core and
// the offline index builder: identifier normalization, front-matter
// extraction, metadata decoding, and the daily-pick selector.
package proposal

import "strings"

// Family identifies a proposal repository family.
type Family string

const (
	FamilyEIP  Family = "EIP"
	FamilyRIP  Family = "RIP"
	FamilyCAIP Family = "CAIP"
)

// Prefix returns the lowercase identifier prefix used in file names and
// route tokens, e.g. "eip" for "eip-1234.md".
func (f Family) Prefix() string {
	return strings.ToLower(string(f))
}

// ParseFamily maps a request-supplied family string to a Family. The empty
// string defaults to EIP, matching the upstream request schema.
func ParseFamily(s string) (Family, bool) {
	switch s {
	case "", "EIP", "eip":
		return FamilyEIP, true
	case "RIP", "rip":
		return FamilyRIP, true
	case "CAIP", "caip":
		return FamilyCAIP, true
	default:
		return "", false
	}
}
