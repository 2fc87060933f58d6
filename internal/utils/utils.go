// Package utils contains general helper functions used across vcoctl.
package utils

import "strings"

// GitDirectoryName is the name of the Git repository directory.
const GitDirectoryName = ".git"

// ContainsFold reports whether substring occurs in text ignoring case.
func ContainsFold(text string, substring string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substring))
}
