package handlers

import (
	"log"
	"net/http"

	"github.com/maynagashev/pokedeck/internal/services"
)

// CardHandler обрабатывает HTTP-запросы к каталогу карт.
type CardHandler struct {
	cardService services.CardService
}

// NewCardHandler создает новый экземпляр CardHandler.
func NewCardHandler(cs services.CardService) *CardHandler {
	return &CardHandler{cardService: cs}
}

// List обрабатывает GET запрос на получение каталога карт.
// Каталог публичный, аутентификация не требуется.
func (h *CardHandler) List(w http.ResponseWriter, _ *http.Request) {
	cards, err := h.cardService.ListCards()
	if err != nil {
		log.Printf("[CardHandler] Ошибка при получении каталога карт: %v", err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, cards)
}
