package flight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// HeaderName carries a flight token on requests and responses.
const HeaderName = "Storefront-Flight"

// ParseHeader extracts a token from a Storefront-Flight header.
// Format: id="0b6f…", view=tracking (RFC 8941 Dictionary).
//
// Examples:
//   - id="abc", view=tracking   → {abc tracking}
//   - id="abc"                  → {abc ""}
//   - view="status";v=1, id=abc → {abc status} (params ignored)
//
// Returns error if header is empty, malformed, or missing the id key.
func ParseHeader(header string) (Token, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Token{}, errors.New("empty Storefront-Flight header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return Token{}, fmt.Errorf("invalid Storefront-Flight header: %w", err)
	}

	id, err := stringMember(dict, "id")
	if err != nil {
		return Token{}, err
	}
	if id == "" {
		return Token{}, errors.New("id must not be empty")
	}

	view, err := stringMember(dict, "view")
	if err != nil && !errors.Is(err, errMissingKey) {
		return Token{}, err
	}

	return Token{ID: id, View: view}, nil
}

// FormatHeader renders t as a Storefront-Flight header value.
// The view is written as a token when it is one, otherwise as a string.
func FormatHeader(t Token) (string, error) {
	dict := httpsfv.NewDictionary()
	dict.Add("id", httpsfv.NewItem(t.ID))
	if t.View != "" {
		if isToken(t.View) {
			dict.Add("view", httpsfv.NewItem(httpsfv.Token(t.View)))
		} else {
			dict.Add("view", httpsfv.NewItem(t.View))
		}
	}
	return httpsfv.Marshal(dict)
}

// isToken reports whether s is a valid RFC 8941 token:
// ALPHA or "*" first, then tchar, ":" or "/".
func isToken(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '*' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~:/", c) >= 0:
		default:
			return false
		}
	}
	return true
}

var errMissingKey = errors.New("key not found in Storefront-Flight header")

// stringMember reads a string or token item from dict.
func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, errMissingKey)
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}

	switch v := item.Value.(type) {
	case string:
		return v, nil
	case httpsfv.Token:
		return string(v), nil
	default:
		return "", fmt.Errorf("%s value must be a string or token", key)
	}
}
