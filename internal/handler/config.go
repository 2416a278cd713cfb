package handler

import (
	"net/http"

	"github.com/sololeveling/internal/config"
)

// ConfigHandler отдаёт публичные параметры веб-клиента (адрес API, тип хранилища сессий).
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler создаёт обработчик конфигурации.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{cfg: cfg}
}

// GetClientConfig возвращает настройки без секретов (URL БД и Redis не отдаются).
func (h *ConfigHandler) GetClientConfig(w http.ResponseWriter, r *http.Request) {
	backend := h.cfg.Storage.Backend
	if backend == "" {
		backend = "file"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"api_base_url":    h.cfg.APIBaseURL,
		"storage_backend": backend,
	})
}
