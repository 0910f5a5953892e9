package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenID returns a new opaque entity id.
func GenID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenPrefixedID returns an id carrying a short kind prefix, e.g. "post_ab12…".
// The prefix is cosmetic; keys encode the entity kind separately.
func GenPrefixedID(prefix string) string {
	if prefix == "" {
		return GenID()
	}
	return prefix + "_" + GenID()
}
