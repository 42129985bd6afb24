package proposal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned when a route token is neither a bare
// number nor a "<prefix>-<digits>[.md]" form.
var ErrInvalidIdentifier = errors.New("invalid proposal identifier")

var digitsPattern = regexp.MustCompile(`^\d+$`)

// ExtractNumber normalizes a route token ("1234", "eip-1234", "eip-1234.md")
// into its numeric identifier. The prefix defaults to "eip" when empty and
// is matched case-sensitively against the whole token.
func ExtractNumber(token, prefix string) (int, error) {
	if prefix == "" {
		prefix = "eip"
	}
	if digitsPattern.MatchString(token) {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, token)
		}
		return n, nil
	}
	if rest, ok := strings.CutPrefix(token, prefix+"-"); ok {
		rest = strings.TrimSuffix(rest, ".md")
		if digitsPattern.MatchString(rest) {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, token)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, token)
}
