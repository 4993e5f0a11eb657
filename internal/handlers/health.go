package handlers

import (
	"net/http"

	"github.com/maynagashev/pokedeck/internal/models"
)

// Health обрабатывает запрос проверки работоспособности сервиса.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: "сервис работает"})
}
