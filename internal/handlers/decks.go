package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/pokedeck/internal/middleware"
	"github.com/maynagashev/pokedeck/internal/models"
	"github.com/maynagashev/pokedeck/internal/services"
)

// DeckHandler обрабатывает HTTP-запросы, связанные с колодами.
// Все маршруты колод закрыты middleware аутентификации.
type DeckHandler struct {
	deckService services.DeckService
}

// NewDeckHandler создает новый экземпляр DeckHandler.
func NewDeckHandler(ds services.DeckService) *DeckHandler {
	return &DeckHandler{deckService: ds}
}

// Create обрабатывает POST запрос на создание колоды.
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[DeckHandler:Create] Не удалось получить userID из контекста")
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	var req models.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[DeckHandler:Create] Ошибка декодирования запроса: %v", err)
		writeError(w, http.StatusBadRequest, "неверный формат запроса")
		return
	}

	log.Printf("[DeckHandler:Create] Запрос на создание колоды '%s' от пользователя %d", req.Name, userID)

	deck, err := h.deckService.CreateDeck(userID, req.Name, req.Cards)
	if err != nil {
		if isDeckValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[DeckHandler:Create] Внутренняя ошибка при создании колоды "+
			"для пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, deck)
}

// ListMine обрабатывает GET запрос на получение всех колод текущего пользователя.
func (h *DeckHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[DeckHandler:ListMine] Не удалось получить userID из контекста")
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	decks, err := h.deckService.ListDecks(userID)
	if err != nil {
		log.Printf("[DeckHandler:ListMine] Внутренняя ошибка при получении колод "+
			"пользователя %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, decks)
}

// Get обрабатывает GET запрос на получение одной колоды по ID.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[DeckHandler:Get] Не удалось получить userID из контекста")
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	deckID, err := deckIDFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "неверный ID колоды")
		return
	}

	deck, err := h.deckService.GetDeck(deckID, userID)
	if err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			// Чужая колода дает тот же ответ, что и несуществующая
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("[DeckHandler:Get] Внутренняя ошибка при получении колоды %d "+
			"для пользователя %d: %v", deckID, userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// Update обрабатывает PATCH запрос на частичное обновление колоды.
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[DeckHandler:Update] Не удалось получить userID из контекста")
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	deckID, err := deckIDFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "неверный ID колоды")
		return
	}

	var req models.UpdateDeckRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[DeckHandler:Update] Ошибка декодирования запроса: %v", err)
		writeError(w, http.StatusBadRequest, "неверный формат запроса")
		return
	}

	log.Printf("[DeckHandler:Update] Запрос на обновление колоды %d от пользователя %d", deckID, userID)

	deck, err := h.deckService.UpdateDeck(deckID, userID, req.Name, req.Cards)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDeckNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case isDeckValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[DeckHandler:Update] Внутренняя ошибка при обновлении колоды %d "+
				"для пользователя %d: %v", deckID, userID, err)
			writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// Delete обрабатывает DELETE запрос на удаление колоды.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[DeckHandler:Delete] Не удалось получить userID из контекста")
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	deckID, err := deckIDFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "неверный ID колоды")
		return
	}

	if err = h.deckService.DeleteDeck(deckID, userID); err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("[DeckHandler:Delete] Внутренняя ошибка при удалении колоды %d "+
			"для пользователя %d: %v", deckID, userID, err)
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "колода удалена"})
	log.Printf("[DeckHandler:Delete] Колода %d пользователя %d удалена", deckID, userID)
}

// deckIDFromURL извлекает и проверяет ID колоды из параметра маршрута.
func deckIDFromURL(r *http.Request) (int64, error) {
	deckID, err := strconv.ParseInt(chi.URLParam(r, "deckID"), 10, 64)
	if err != nil {
		return 0, err
	}
	if deckID <= 0 {
		return 0, errors.New("ID колоды должен быть положительным")
	}
	return deckID, nil
}

// isDeckValidationError сообщает, относится ли ошибка к проверке состава колоды.
func isDeckValidationError(err error) bool {
	return errors.Is(err, services.ErrDeckNameEmpty) ||
		errors.Is(err, services.ErrInvalidCardCount) ||
		errors.Is(err, services.ErrDuplicateCard) ||
		errors.Is(err, services.ErrUnknownCard)
}
