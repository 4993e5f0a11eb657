package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/pokedeck/internal/models"
	"github.com/maynagashev/pokedeck/internal/services"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	SignUp(email, username, password string) (string, *models.User, error)
	SignIn(email, password string) (string, *models.User, error)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service AuthService // Зависимость от интерфейса, а не конкретной реализации
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// SignUp обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса регистрации: %v", err)
		writeError(w, http.StatusBadRequest, "неверный формат запроса")
		return
	}

	// Валидация входных данных (простая)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		log.Printf("[AuthHandler] Пустое обязательное поле при регистрации")
		writeError(w, http.StatusBadRequest, "email, имя пользователя и пароль не могут быть пустыми")
		return
	}

	log.Printf("[AuthHandler] Попытка регистрации пользователя: %s", req.Email)

	token, user, err := h.service.SignUp(req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: user})
	log.Printf("[AuthHandler] Успешная регистрация: %s", req.Email)
}

// SignIn обрабатывает запрос на вход пользователя.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса входа: %v", err)
		writeError(w, http.StatusBadRequest, "неверный формат запроса")
		return
	}

	if req.Email == "" || req.Password == "" {
		log.Printf("[AuthHandler] Пустой email или пароль при входе")
		writeError(w, http.StatusBadRequest, "email и пароль не могут быть пустыми")
		return
	}

	log.Printf("[AuthHandler] Попытка входа пользователя: %s", req.Email)

	token, user, err := h.service.SignIn(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Один и тот же ответ для неизвестного email и неверного пароля
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user})
	log.Printf("[AuthHandler] Успешный вход: %s", req.Email)
}
