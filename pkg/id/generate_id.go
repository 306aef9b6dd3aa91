package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var reID32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 is a random (v4) uuid rendered as 32 lowercase hex chars, the form
// every asset, loan and owner id takes.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s has the NewID32 shape. Uppercase is rejected.
func Valid(s string) bool { return reID32.MatchString(s) }
