package filter

import (
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
)

// Recognised query parameter keys.
const (
	KeySearch        = "search"
	KeyCategory      = "category"
	KeyCompleted     = "completed"
	KeyDeadline      = "deadline"
	KeySortBy        = "sort_by"
	KeySortDirection = "sort_direction"
)

// recognisedKeys is the whitelist of parameters that influence a query.
var recognisedKeys = map[string]struct{}{
	KeySearch:        {},
	KeyCategory:      {},
	KeyCompleted:     {},
	KeyDeadline:      {},
	KeySortBy:        {},
	KeySortDirection: {},
}

// Params holds the raw, untrusted filter parameters of a list request.
// Only recognised keys are kept. A key being present is meaningful even when
// its value is empty: "completed" is only filtered on when supplied.
type Params map[string]string

// ParamsFromQuery extracts recognised parameters from a URL query,
// keeping the first value of each key.
func ParamsFromQuery(q url.Values) Params {
	p := make(Params)
	for key, values := range q {
		if _, ok := recognisedKeys[key]; !ok {
			continue
		}
		if len(values) == 0 {
			p[key] = ""
			continue
		}
		p[key] = values[0]
	}
	return p
}

// Get returns the value for key and whether it was supplied.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Value returns the value for key, or "" if absent.
func (p Params) Value(key string) string {
	return p[key]
}

// Has reports whether key was supplied.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Fingerprint returns a stable, fixed-length identifier of the normalised
// parameters. Unknown keys and key order never influence the result.
func (p Params) Fingerprint() string {
	keys := make([]string, 0, len(p))
	for key := range p {
		if _, ok := recognisedKeys[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, [2]string{key, p[key]})
	}

	// Marshalling a slice of string pairs cannot fail.
	canonical, _ := json.Marshal(pairs)
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// ParseBool is a permissive boolean parser: "1", "true", "on" and "yes"
// (case-insensitive, surrounding spaces ignored) are true; anything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// WellFormed reports whether s is valid UTF-8 without NUL bytes, i.e. text a
// store can bind as a parameter. Malformed values are ignored by the stages.
func WellFormed(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
