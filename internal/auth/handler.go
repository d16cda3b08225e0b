package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/internal/view"
)

var departments = []string{"CSE", "ECE", "EEE", "MECH", "CIVIL"}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	rbac           rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		rbac:           rbac,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RedirectAuthenticated())
		r.Get("/login", h.showLogin)
		r.Post("/login", h.handleLogin)
		r.Get("/register", h.showRegister)
		r.Post("/register", h.handleRegister)
		r.Get("/password/forgot", h.showForgot)
		r.Post("/password/forgot", h.handleForgot)
	})
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireScreen(rbac.ScreenProfile))
		r.Get("/profile", h.showProfile)
		r.Post("/profile", h.handleProfile)
		r.Post("/profile/password", h.handlePassword)
	})
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/login", "Login", map[string]any{"Form": loginForm{}, "Errors": map[string]string{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	err := shared.ValidateStruct(form)
	var user User
	if err == nil {
		user, err = h.service.Authenticate(r.Context(), form.Email, form.Password)
	}
	if err != nil {
		errs := shared.FieldErrors(err)
		if errors.Is(err, shared.ErrInvalidCredentials) {
			errs = map[string]string{"general": shared.UserSafeMessage(err)}
		} else if _, ok := errs["general"]; ok {
			h.logger.Error("login failed", slog.Any("error", err))
		}
		form.Password = ""
		h.render(w, r, "auth/login", "Login", map[string]any{"Form": form, "Errors": errs}, http.StatusBadRequest)
		return
	}
	h.signIn(w, r, user, "Welcome back, "+user.Name+"!")
}

// signIn rotates the session id, stores the principal and sends the user to
// their dashboard.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user User, greeting string) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during sign in")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.sessionManager.Renew(sess)
	rbac.SavePrincipal(sess, user.Principal())
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: greeting})
	http.Redirect(w, r, rbac.DashboardFor(user.Role), http.StatusSeeOther)
}

type registerForm struct {
	Role        string
	Name        string
	Email       string
	StudentID   string
	Department  string
	Year        string
	Designation string
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, registerForm{Role: string(rbac.RoleStudent), Year: "1"}, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, form registerForm, errs map[string]string, status int) {
	h.render(w, r, "auth/register", "Register", map[string]any{
		"Form":        form,
		"Roles":       rbac.Roles,
		"Departments": departments,
		"Errors":      errs,
	}, status)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		Role:        strings.TrimSpace(r.PostFormValue("role")),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		StudentID:   strings.TrimSpace(r.PostFormValue("student_id")),
		Department:  strings.TrimSpace(r.PostFormValue("department")),
		Year:        strings.TrimSpace(r.PostFormValue("year")),
		Designation: strings.TrimSpace(r.PostFormValue("designation")),
	}
	base := RegistrationBase{
		Name:            form.Name,
		Email:           form.Email,
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	var reg Registration
	switch rbac.Role(form.Role) {
	case rbac.RoleStudent:
		year, _ := strconv.Atoi(form.Year)
		reg = StudentRegistration{RegistrationBase: base, StudentID: form.StudentID, Department: form.Department, Year: year}
	case rbac.RoleFaculty:
		reg = FacultyRegistration{RegistrationBase: base, Department: form.Department, Designation: form.Designation}
	case rbac.RoleAdmin:
		reg = AdminRegistration{RegistrationBase: base}
	}
	user, err := h.service.Register(r.Context(), reg)
	if err != nil {
		errs := shared.FieldErrors(err)
		if errors.Is(err, shared.ErrEmailTaken) {
			errs = map[string]string{"email": shared.UserSafeMessage(err)}
		}
		h.renderRegister(w, r, form, errs, http.StatusBadRequest)
		return
	}
	h.logger.Info("user registered", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	h.signIn(w, r, user, "Welcome to the SVIT portal, "+user.Name+"!")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		rbac.SavePrincipal(sess, nil)
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
}

func (h *Handler) showForgot(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/forgot", "Forgot Password", map[string]any{"Email": "", "Errors": map[string]string{}}, http.StatusOK)
}

func (h *Handler) handleForgot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	err := shared.Validator().Var(email, "required,email")
	if err != nil {
		h.render(w, r, "auth/forgot", "Forgot Password", map[string]any{
			"Email":  email,
			"Errors": map[string]string{"email": "email must be a valid email address"},
		}, http.StatusBadRequest)
		return
	}
	if err := h.service.ForgotPassword(r.Context(), email); err != nil {
		msg := shared.UserSafeMessage(err)
		if errors.Is(err, shared.ErrNotFound) {
			msg = "Email address not found."
		} else {
			h.logger.Error("forgot password", slog.Any("error", err))
		}
		h.render(w, r, "auth/forgot", "Forgot Password", map[string]any{
			"Email":  email,
			"Errors": map[string]string{"general": msg},
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, rbac.LoginPath, "success", "Password reset instructions sent to your email.")
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), rbac.PrincipalFromContext(r.Context()).ID)
	if err != nil {
		h.logger.Error("load profile", slog.Any("error", err))
		h.render(w, r, "errors/error", "Profile", map[string]any{
			"Message":  shared.UserSafeMessage(err),
			"RetryURL": r.URL.RequestURI(),
		}, http.StatusInternalServerError)
		return
	}
	h.renderProfile(w, r, user, map[string]string{}, map[string]string{}, http.StatusOK)
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, user User, errs, pwErrs map[string]string, status int) {
	h.render(w, r, "auth/profile", "My Profile", map[string]any{
		"Profile":        user,
		"Departments":    departments,
		"Errors":         errs,
		"PasswordErrors": pwErrs,
	}, status)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	principal := rbac.PrincipalFromContext(r.Context())
	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	patch := ProfilePatch{Name: &name, Email: &email}
	if _, ok := r.PostForm["department"]; ok {
		dept := r.PostFormValue("department")
		patch.Department = &dept
	}
	if raw, ok := r.PostForm["year"]; ok && len(raw) > 0 {
		year, _ := strconv.Atoi(strings.TrimSpace(raw[0]))
		patch.Year = &year
	}
	if _, ok := r.PostForm["student_id"]; ok {
		sid := r.PostFormValue("student_id")
		patch.StudentID = &sid
	}
	if _, ok := r.PostForm["designation"]; ok {
		designation := r.PostFormValue("designation")
		patch.Designation = &designation
	}
	user, err := h.service.UpdateProfile(r.Context(), principal.ID, patch)
	if err != nil {
		current, loadErr := h.service.Profile(r.Context(), principal.ID)
		if loadErr != nil {
			h.redirectWithFlash(w, r, "/profile", "error", shared.UserSafeMessage(loadErr))
			return
		}
		current.Name, current.Email = strings.TrimSpace(name), strings.TrimSpace(email)
		errs := shared.FieldErrors(err)
		if errors.Is(err, shared.ErrEmailTaken) {
			errs = map[string]string{"email": shared.UserSafeMessage(err)}
		}
		h.renderProfile(w, r, current, errs, map[string]string{}, http.StatusBadRequest)
		return
	}
	rbac.SavePrincipal(shared.SessionFromContext(r.Context()), user.Principal())
	h.redirectWithFlash(w, r, "/profile", "success", "Profile updated successfully")
}

func (h *Handler) handlePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	principal := rbac.PrincipalFromContext(r.Context())
	change := PasswordChange{
		Current: r.PostFormValue("current_password"),
		New:     r.PostFormValue("new_password"),
		Confirm: r.PostFormValue("confirm_password"),
	}
	err := h.service.ChangePassword(r.Context(), principal.ID, change)
	if err == nil {
		h.redirectWithFlash(w, r, "/profile", "success", "Password changed successfully")
		return
	}
	user, loadErr := h.service.Profile(r.Context(), principal.ID)
	if loadErr != nil {
		h.redirectWithFlash(w, r, "/profile", "error", shared.UserSafeMessage(loadErr))
		return
	}
	pwErrs := shared.FieldErrors(err)
	if errors.Is(err, shared.ErrWrongPassword) {
		pwErrs = map[string]string{"current_password": shared.UserSafeMessage(err)}
	}
	h.renderProfile(w, r, user, map[string]string{}, pwErrs, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        rbac.ViewUser(r.Context()),
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
