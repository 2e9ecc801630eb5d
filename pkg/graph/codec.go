package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashSeparator joins the hash input segments. Fixed: changing it would
// re-key every Transliteration node already in the store.
const hashSeparator = "."

// EncodeTransliteration converts a raw transliteration value into its
// canonical mutation-safe form and the content hash used as its dedup key.
//
// The hash covers owner type, owner key and the raw text only. Language and
// script tags are deliberately excluded: the source systems supply the same
// text under varying tags and those must collapse to one node. Each owner
// field uses its own ownerType (e.g. "Expression.meaning"), so identical text
// under different fields stays distinct.
//
// Returns ErrInvalidInput when text is empty; callers filter blank values
// rather than writing empty transliteration nodes.
func EncodeTransliteration(ownerType, ownerKey, text string) (canonical, hash string, err error) {
	if text == "" {
		return "", "", fmt.Errorf("%w: empty transliteration value for %s %q", ErrInvalidInput, ownerType, ownerKey)
	}

	sum := sha256.Sum256([]byte(ownerType + hashSeparator + ownerKey + hashSeparator + text))

	return escapeString(text), hex.EncodeToString(sum[:]), nil
}
