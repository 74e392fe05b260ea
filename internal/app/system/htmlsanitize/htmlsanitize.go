// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-supplied rich
// text before it is stored. Project descriptions accept basic formatting;
// everything else (scripts, event handlers, javascript: URLs) is removed.
package htmlsanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

// Sanitize returns s with unsafe HTML removed. Plain text passes through
// unchanged.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	once.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy.Sanitize(s)
}
