package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/sololeveling/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("writeJSON encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// formInt читает необязательное целое поле формы: пусто — nil, не число — ok=false.
func formInt(r *http.Request, key string) (v *int, ok bool) {
	s := strings.TrimSpace(r.PostFormValue(key))
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// formFloat читает необязательное дробное поле формы (вес в кг).
func formFloat(r *http.Request, key string) (v *float64, ok bool) {
	s := strings.TrimSpace(strings.ReplaceAll(r.PostFormValue(key), ",", "."))
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
