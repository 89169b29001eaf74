// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/studypointin/studypoint/internal/app/features/errors"
	userstore "github.com/studypointin/studypoint/internal/app/store/users"
	"github.com/studypointin/studypoint/internal/app/system/auth"
	"github.com/studypointin/studypoint/internal/app/system/limits"
	"github.com/studypointin/studypoint/internal/app/system/navigation"
	"github.com/studypointin/studypoint/internal/app/system/ratelimit"
	"github.com/studypointin/studypoint/internal/app/system/timeouts"
	"github.com/studypointin/studypoint/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler serves the back-office sign-in form.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	limiter *ratelimit.SignInLimiter
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
		limiter:    ratelimit.NewSignInLimiter(),
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := navigation.SafeBackURL(r, navigation.BackURLOptions{})

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: ret,
	})
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxLoginFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := navigation.SafeBackURL(r, navigation.BackURLOptions{})

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, ret)
		return
	}

	if ok, msg := h.limiter.Allow(r, email); !ok {
		h.Log.Warn("sign-in rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("email", email))
		w.WriteHeader(http.StatusTooManyRequests)
		templates.Render(w, r, "login", loginFormData{
			BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
			Error:     msg,
			Email:     email,
			ReturnURL: ret,
		})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login: authenticate")
	defer cancel()

	u, err := h.Users.Authenticate(ctx, email, password)
	if errors.Is(err, userstore.ErrNotFound) {
		// One message for unknown email, wrong password, and disabled
		// account alike.
		h.renderFormWithError(w, r, "Incorrect email or password.", email, ret)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "authenticate failed", err, "A server error occurred.", "/login")
		return
	}

	sessUser := auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, sessUser); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "A server error occurred.", "/login")
		return
	}
	h.limiter.Reset(r, email)

	h.Log.Info("admin signed in",
		zap.String("user_id", sessUser.ID),
		zap.String("email", u.Email))

	dest := ret
	if dest == "" {
		dest = "/admin/bulk-upload"
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: ret,
	})
}
