package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sololeveling/internal/dashboard"
	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/internal/middleware"
	"github.com/sololeveling/internal/model"
	"github.com/sololeveling/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageHandler отдаёт страницу клиента и обрабатывает формы. Все POST заканчиваются
// редиректом 303 на "/", ошибка показывается из состояния экрана.
type PageHandler struct {
	reg        *Registry
	apiBaseURL string
}

func NewPageHandler(reg *Registry, apiBaseURL string) *PageHandler {
	return &PageHandler{reg: reg, apiBaseURL: apiBaseURL}
}

type pageData struct {
	APIBaseURL string
	State      dashboard.State
	ExpiresAt  string
}

func (h *PageHandler) board(r *http.Request) *dashboard.Dashboard {
	return h.reg.Get(r.Context(), middleware.GetBrowserID(r.Context()))
}

// Index рендерит страницу по текущему состоянию экрана браузера.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	state := h.board(r).Snapshot()
	data := pageData{APIBaseURL: h.apiBaseURL, State: state}
	if state.LoggedIn {
		if claims, err := session.ParseClaims(state.Session.Token); err == nil && claims.ExpiresAt != nil {
			data.ExpiresAt = claims.ExpiresAt.Local().Format(time.DateTime)
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		logger.Errorf("render index: %v", err)
	}
}

// Signup — POST /signup (форма регистрации).
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	d := h.board(r)
	if err := r.ParseForm(); err != nil {
		d.SetError("invalid form")
		redirectHome(w, r)
		return
	}
	height, ok := formInt(r, "height_cm")
	if !ok {
		d.SetError("height_cm must be a whole number")
		redirectHome(w, r)
		return
	}
	weight, ok := formFloat(r, "weight_kg")
	if !ok {
		d.SetError("weight_kg must be a number")
		redirectHome(w, r)
		return
	}
	req := model.SignupRequest{
		Email:         strings.TrimSpace(r.PostFormValue("email")),
		Password:      r.PostFormValue("password"),
		DisplayName:   strings.TrimSpace(r.PostFormValue("display_name")),
		HeightCm:      height,
		WeightKg:      weight,
		ActivityLevel: model.ActivityLevel(r.PostFormValue("activity_level")),
	}
	if err := d.Signup(r.Context(), req); err != nil {
		logger.Debugf("signup failed browser=%s: %v", middleware.MaskID(middleware.GetBrowserID(r.Context())), err)
	}
	redirectHome(w, r)
}

// Login — POST /login.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	d := h.board(r)
	if err := r.ParseForm(); err != nil {
		d.SetError("invalid form")
		redirectHome(w, r)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	if err := d.Login(r.Context(), email, r.PostFormValue("password")); err != nil {
		logger.Debugf("login failed browser=%s: %v", middleware.MaskID(middleware.GetBrowserID(r.Context())), err)
	}
	redirectHome(w, r)
}

// Logout — POST /logout.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.board(r).Logout(r.Context()); err != nil {
		logger.Errorf("logout browser=%s: %v", middleware.MaskID(middleware.GetBrowserID(r.Context())), err)
	}
	redirectHome(w, r)
}

// GenerateMissions — POST /missions/generate. Повторное нажатие во время генерации игнорируется.
func (h *PageHandler) GenerateMissions(w http.ResponseWriter, r *http.Request) {
	err := h.board(r).GenerateMissions(r.Context())
	if err != nil && !errors.Is(err, dashboard.ErrBusy) {
		logger.Debugf("generate missions failed: %v", err)
	}
	redirectHome(w, r)
}

// SetMode — POST /mode (переключение signup/login).
func (h *PageHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	h.board(r).SetMode(dashboard.Mode(r.PostFormValue("mode")))
	redirectHome(w, r)
}

// State — GET /api/state: снимок экрана в JSON.
func (h *PageHandler) State(w http.ResponseWriter, r *http.Request) {
	if middleware.GetBrowserID(r.Context()) == "" {
		writeError(w, http.StatusBadRequest, "no browser session")
		return
	}
	writeJSON(w, http.StatusOK, h.board(r).Snapshot())
}
