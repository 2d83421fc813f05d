// Package ident produces run identifiers and node-set names.
package ident

import (
	"fmt"
	"os/user"
	"time"
)

// NewRunID builds the canonical run identifier for a generation run:
// <user>_<YYYY>_<MMDD>_<HHMMSS>. Runs started in the same second by
// the same user share an id; callers that need stronger uniqueness
// layer a generation uuid on top (the manifest does).
func NewRunID(username string, t time.Time) string {
	return fmt.Sprintf("%s_%s", username, t.Format("2006_0102_150405"))
}

// CurrentUser returns the login name of the invoking user.
func CurrentUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	return u.Username, nil
}
