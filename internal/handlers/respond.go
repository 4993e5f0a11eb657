package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/maynagashev/pokedeck/internal/models"
)

// writeJSON кодирует payload в JSON и отправляет его с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Статус уже отправлен, изменить ответ нельзя - только логируем
		log.Printf("[Handlers] Ошибка кодирования JSON-ответа: %v", err)
	}
}

// writeError отправляет ошибку в едином формате {"error": "..."}.
// Текст ошибок хранилища в тело ответа не попадает.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
