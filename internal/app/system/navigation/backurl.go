// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/admin/materials").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit",
	// "/delete"). These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string

	// PreserveQueryParam is an optional query parameter to carry into the
	// fallback URL, e.g. "subject" keeps the subject filter on the way back.
	PreserveQueryParam string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", rejects
// open redirects, optionally enforces a prefix, and excludes subpaths that
// would loop back to action pages.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	if ret != "" {
		valid := true
		if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
			valid = false
		}
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}
		if valid {
			return ret
		}
	}

	fallback := opts.Fallback
	if opts.PreserveQueryParam != "" {
		param := query.Get(r, opts.PreserveQueryParam)
		if param == "" {
			param = strings.TrimSpace(r.FormValue(opts.PreserveQueryParam))
		}
		if param != "" && param != "all" {
			if strings.Contains(fallback, "?") {
				fallback += "&" + opts.PreserveQueryParam + "=" + param
			} else {
				fallback += "?" + opts.PreserveQueryParam + "=" + param
			}
		}
	}

	return fallback
}

// Common back URL configurations for reuse across features.
var (
	// MaterialsBackURL returns options for admin material pages.
	MaterialsBackURL = BackURLOptions{
		AllowedPrefix:    "/admin/materials",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/admin/materials",
	}

	// SubjectsBackURL returns options for admin subject pages.
	SubjectsBackURL = BackURLOptions{
		AllowedPrefix:    "/admin/subjects",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/admin/subjects",
	}

	// ChaptersBackURL returns options for admin chapter pages, keeping the
	// subject filter across the round trip.
	ChaptersBackURL = BackURLOptions{
		AllowedPrefix:      "/admin/chapters",
		ExcludedSubpaths:   []string{"/edit", "/delete", "/new"},
		Fallback:           "/admin/chapters",
		PreserveQueryParam: "subject",
	}

	// ContentBackURL returns options for the public content pages.
	ContentBackURL = BackURLOptions{
		AllowedPrefix: "/content",
		Fallback:      "/",
	}
)
