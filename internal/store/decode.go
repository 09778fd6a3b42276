package store

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DecodePolicy decides what happens to TEXT values that are not valid UTF-8.
type DecodePolicy string

const (
	// DecodeIgnore drops invalid byte sequences.
	DecodeIgnore DecodePolicy = "ignore"
	// DecodeReplace substitutes U+FFFD for invalid byte sequences.
	DecodeReplace DecodePolicy = "replace"
	// DecodeStrict fails the read with *DecodeError.
	DecodeStrict DecodePolicy = "strict"
)

// ParseDecodePolicy parses a policy name. The empty string means
// DecodeIgnore.
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch DecodePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DecodeIgnore:
		return DecodeIgnore, nil
	case DecodeReplace:
		return DecodeReplace, nil
	case DecodeStrict:
		return DecodeStrict, nil
	default:
		return "", fmt.Errorf("unknown decode policy %q (want ignore, replace or strict)", s)
	}
}

// text applies the policy to one string.
func (p DecodePolicy) text(s string) (string, error) {
	if utf8.ValidString(s) {
		return s, nil
	}

	switch p {
	case DecodeStrict:
		return "", &DecodeError{Value: []byte(s)}
	case DecodeReplace:
		out, _, err := transform.String(runes.ReplaceIllFormed(), s)
		if err != nil {
			return "", fmt.Errorf("decode text: %w", err)
		}
		return out, nil
	default:
		return strings.ToValidUTF8(s, ""), nil
	}
}

// value applies the policy to a scanned column value. Only strings are
// touched; BLOBs come back as []byte and are returned as-is.
func (p DecodePolicy) value(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	return p.text(s)
}
