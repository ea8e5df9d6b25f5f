package git

import (
	"fmt"
	"strings"
)

// ParseRange splits a revision range such as "v1.0..HEAD" into its endpoints.
// Both two-dot and three-dot forms are accepted; an empty end means HEAD.
func ParseRange(spec string) (from, to string, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", fmt.Errorf("empty revision range")
	}

	if idx := strings.Index(spec, "..."); idx != -1 {
		from, to = spec[:idx], spec[idx+3:]
	} else if idx := strings.Index(spec, ".."); idx != -1 {
		from, to = spec[:idx], spec[idx+2:]
	} else {
		return "", "", fmt.Errorf("invalid revision range %q: expected 'from..to'", spec)
	}

	if from == "" {
		return "", "", fmt.Errorf("invalid revision range %q: missing start", spec)
	}
	if to == "" {
		to = "HEAD"
	}
	return from, to, nil
}
