// Package viewdata builds the common view-model fields every page template
// shares.
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"github.com/studypointin/studypoint/internal/app/system/authz"
)

// SiteName is shown in the header and page titles.
const SiteName = "StudyPoint"

// BaseVM contains common fields for all view models. Embed it in
// feature-specific view models:
//
//	type pageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF token for form submission
	CSRFToken string
}

// NewBaseVM creates a populated BaseVM for a page. backDefault is used when
// the request carries no usable return URL.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	return BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}
