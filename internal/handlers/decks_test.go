package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/pokedeck/internal/handlers"
	"github.com/maynagashev/pokedeck/internal/middleware"
	"github.com/maynagashev/pokedeck/internal/models"
	"github.com/maynagashev/pokedeck/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock DeckService --- //

type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) CreateDeck(userID int64, name string, cardIDs []int64) (*models.Deck, error) {
	args := m.Called(userID, name, cardIDs)
	deck, _ := args.Get(0).(*models.Deck) //nolint:errcheck // приведение типа мока
	return deck, args.Error(1)
}

func (m *MockDeckService) ListDecks(userID int64) ([]models.Deck, error) {
	args := m.Called(userID)
	decks, _ := args.Get(0).([]models.Deck) //nolint:errcheck // приведение типа мока
	return decks, args.Error(1)
}

func (m *MockDeckService) GetDeck(deckID, userID int64) (*models.Deck, error) {
	args := m.Called(deckID, userID)
	deck, _ := args.Get(0).(*models.Deck) //nolint:errcheck // приведение типа мока
	return deck, args.Error(1)
}

func (m *MockDeckService) UpdateDeck(deckID, userID int64, name *string, cardIDs []int64) (*models.Deck, error) {
	args := m.Called(deckID, userID, name, cardIDs)
	deck, _ := args.Get(0).(*models.Deck) //nolint:errcheck // приведение типа мока
	return deck, args.Error(1)
}

func (m *MockDeckService) DeleteDeck(deckID, userID int64) error {
	args := m.Called(deckID, userID)
	return args.Error(0)
}

// --- Вспомогательные функции --- //

const testUserID int64 = 42

// setupDeckRouter создает роутер с маршрутами колод и тестовым middleware,
// подкладывающим userID в контекст (вместо настоящей проверки токена).
func setupDeckRouter(h *handlers.DeckHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/decks", func(r chi.Router) {
		r.Use(injectUserID(testUserID))
		r.Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Get("/{deckID}", h.Get)
		r.Patch("/{deckID}", h.Update)
		r.Delete("/{deckID}", h.Delete)
	})
	return r
}

func injectUserID(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sampleCardIDs() []int64 {
	return []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
}

func sampleDeck(deckID int64, name string) *models.Deck {
	return &models.Deck{ID: deckID, UserID: testUserID, Name: name}
}

// --- Tests --- //

func TestNewDeckHandler(t *testing.T) {
	mockService := new(MockDeckService)
	h := handlers.NewDeckHandler(mockService)
	assert.NotNil(t, h)
}

func TestDeckHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockDeckService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Успешное создание",
			body: `{"name":"Моя колода","cards":[1,2,3,4,5,6,7,8,9,10]}`,
			setupMock: func(m *MockDeckService) {
				m.On("CreateDeck", testUserID, "Моя колода", sampleCardIDs()).
					Return(sampleDeck(5, "Моя колода"), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"name":"Моя колода"`,
		},
		{
			name:           "Невалидный JSON",
			body:           `{"name":`,
			setupMock:      func(_ *MockDeckService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "неверный формат запроса",
		},
		{
			name: "Пустое имя колоды",
			body: `{"name":"","cards":[1,2,3,4,5,6,7,8,9,10]}`,
			setupMock: func(m *MockDeckService) {
				m.On("CreateDeck", testUserID, "", sampleCardIDs()).
					Return((*models.Deck)(nil), services.ErrDeckNameEmpty)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   services.ErrDeckNameEmpty.Error(),
		},
		{
			name: "Неверное число карт",
			body: `{"name":"Моя колода","cards":[1,2,3]}`,
			setupMock: func(m *MockDeckService) {
				m.On("CreateDeck", testUserID, "Моя колода", []int64{1, 2, 3}).
					Return((*models.Deck)(nil), services.ErrInvalidCardCount)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   services.ErrInvalidCardCount.Error(),
		},
		{
			name: "Повторяющиеся карты",
			body: `{"name":"Моя колода","cards":[1,1,3,4,5,6,7,8,9,10]}`,
			setupMock: func(m *MockDeckService) {
				m.On("CreateDeck", testUserID, "Моя колода", []int64{1, 1, 3, 4, 5, 6, 7, 8, 9, 10}).
					Return((*models.Deck)(nil), services.ErrDuplicateCard)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   services.ErrDuplicateCard.Error(),
		},
		{
			name: "Неизвестная карта",
			body: `{"name":"Моя колода","cards":[1,2,3,4,5,6,7,8,9,999]}`,
			setupMock: func(m *MockDeckService) {
				m.On("CreateDeck", testUserID, "Моя колода", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 999}).
					Return((*models.Deck)(nil), services.ErrUnknownCard)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   services.ErrUnknownCard.Error(),
		},
		{
			name: "Внутренняя ошибка сервиса",
			body: `{"name":"Моя колода","cards":[1,2,3,4,5,6,7,8,9,10]}`,
			setupMock: func(m *MockDeckService) {
				m.On("CreateDeck", testUserID, "Моя колода", sampleCardIDs()).
					Return((*models.Deck)(nil), errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "внутренняя ошибка сервера",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDeckService)
			tt.setupMock(mockService)
			router := setupDeckRouter(handlers.NewDeckHandler(mockService))

			req := httptest.NewRequest(http.MethodPost, "/api/decks/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDeckHandler_Create_NoUserIDInContext(t *testing.T) {
	// Маршрут без middleware: userID в контексте нет
	mockService := new(MockDeckService)
	r := chi.NewRouter()
	r.Post("/api/decks/", handlers.NewDeckHandler(mockService).Create)

	body := `{"name":"Моя колода","cards":[1,2,3,4,5,6,7,8,9,10]}`
	req := httptest.NewRequest(http.MethodPost, "/api/decks/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	mockService.AssertNotCalled(t, "CreateDeck", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeckHandler_ListMine(t *testing.T) {
	t.Run("Успешное получение списка", func(t *testing.T) {
		mockService := new(MockDeckService)
		mockService.On("ListDecks", testUserID).
			Return([]models.Deck{*sampleDeck(1, "Первая"), *sampleDeck(2, "Вторая")}, nil)
		router := setupDeckRouter(handlers.NewDeckHandler(mockService))

		req := httptest.NewRequest(http.MethodGet, "/api/decks/mine", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var decks []models.Deck
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decks))
		assert.Len(t, decks, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("Пустой список возвращает пустой массив", func(t *testing.T) {
		mockService := new(MockDeckService)
		mockService.On("ListDecks", testUserID).Return([]models.Deck{}, nil)
		router := setupDeckRouter(handlers.NewDeckHandler(mockService))

		req := httptest.NewRequest(http.MethodGet, "/api/decks/mine", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("Внутренняя ошибка сервиса", func(t *testing.T) {
		mockService := new(MockDeckService)
		mockService.On("ListDecks", testUserID).Return(([]models.Deck)(nil), errors.New("db down"))
		router := setupDeckRouter(handlers.NewDeckHandler(mockService))

		req := httptest.NewRequest(http.MethodGet, "/api/decks/mine", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "внутренняя ошибка сервера")
	})
}

func TestDeckHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(m *MockDeckService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Успешное получение",
			url:  "/api/decks/5",
			setupMock: func(m *MockDeckService) {
				m.On("GetDeck", int64(5), testUserID).Return(sampleDeck(5, "Моя колода"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Моя колода"`,
		},
		{
			name:           "Нечисловой ID",
			url:            "/api/decks/abc",
			setupMock:      func(_ *MockDeckService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "неверный ID колоды",
		},
		{
			name:           "Отрицательный ID",
			url:            "/api/decks/-1",
			setupMock:      func(_ *MockDeckService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "неверный ID колоды",
		},
		{
			name: "Колода не найдена",
			url:  "/api/decks/404",
			setupMock: func(m *MockDeckService) {
				m.On("GetDeck", int64(404), testUserID).
					Return((*models.Deck)(nil), services.ErrDeckNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   services.ErrDeckNotFound.Error(),
		},
		{
			name: "Внутренняя ошибка сервиса",
			url:  "/api/decks/5",
			setupMock: func(m *MockDeckService) {
				m.On("GetDeck", int64(5), testUserID).
					Return((*models.Deck)(nil), errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "внутренняя ошибка сервера",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDeckService)
			tt.setupMock(mockService)
			router := setupDeckRouter(handlers.NewDeckHandler(mockService))

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDeckHandler_Update(t *testing.T) {
	newName := "Новое имя"

	tests := []struct {
		name           string
		url            string
		body           string
		setupMock      func(m *MockDeckService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Обновление только имени",
			url:  "/api/decks/5",
			body: `{"name":"Новое имя"}`,
			setupMock: func(m *MockDeckService) {
				m.On("UpdateDeck", int64(5), testUserID, &newName, ([]int64)(nil)).
					Return(sampleDeck(5, "Новое имя"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Новое имя"`,
		},
		{
			name: "Обновление только карт",
			url:  "/api/decks/5",
			body: `{"cards":[1,2,3,4,5,6,7,8,9,10]}`,
			setupMock: func(m *MockDeckService) {
				m.On("UpdateDeck", int64(5), testUserID, (*string)(nil), sampleCardIDs()).
					Return(sampleDeck(5, "Моя колода"), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Моя колода"`,
		},
		{
			name:           "Нечисловой ID",
			url:            "/api/decks/abc",
			body:           `{"name":"Новое имя"}`,
			setupMock:      func(_ *MockDeckService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "неверный ID колоды",
		},
		{
			name:           "Невалидный JSON",
			url:            "/api/decks/5",
			body:           `{"name":`,
			setupMock:      func(_ *MockDeckService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "неверный формат запроса",
		},
		{
			name: "Колода не найдена",
			url:  "/api/decks/404",
			body: `{"name":"Новое имя"}`,
			setupMock: func(m *MockDeckService) {
				m.On("UpdateDeck", int64(404), testUserID, &newName, ([]int64)(nil)).
					Return((*models.Deck)(nil), services.ErrDeckNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   services.ErrDeckNotFound.Error(),
		},
		{
			name: "Неверное число карт",
			url:  "/api/decks/5",
			body: `{"cards":[1,2,3]}`,
			setupMock: func(m *MockDeckService) {
				m.On("UpdateDeck", int64(5), testUserID, (*string)(nil), []int64{1, 2, 3}).
					Return((*models.Deck)(nil), services.ErrInvalidCardCount)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   services.ErrInvalidCardCount.Error(),
		},
		{
			name: "Внутренняя ошибка сервиса",
			url:  "/api/decks/5",
			body: `{"name":"Новое имя"}`,
			setupMock: func(m *MockDeckService) {
				m.On("UpdateDeck", int64(5), testUserID, &newName, ([]int64)(nil)).
					Return((*models.Deck)(nil), errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "внутренняя ошибка сервера",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDeckService)
			tt.setupMock(mockService)
			router := setupDeckRouter(handlers.NewDeckHandler(mockService))

			req := httptest.NewRequest(http.MethodPatch, tt.url, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestDeckHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(m *MockDeckService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Успешное удаление",
			url:  "/api/decks/5",
			setupMock: func(m *MockDeckService) {
				m.On("DeleteDeck", int64(5), testUserID).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "колода удалена",
		},
		{
			name:           "Нечисловой ID",
			url:            "/api/decks/abc",
			setupMock:      func(_ *MockDeckService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "неверный ID колоды",
		},
		{
			name: "Колода не найдена",
			url:  "/api/decks/404",
			setupMock: func(m *MockDeckService) {
				m.On("DeleteDeck", int64(404), testUserID).Return(services.ErrDeckNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   services.ErrDeckNotFound.Error(),
		},
		{
			name: "Внутренняя ошибка сервиса",
			url:  "/api/decks/5",
			setupMock: func(m *MockDeckService) {
				m.On("DeleteDeck", int64(5), testUserID).Return(errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "внутренняя ошибка сервера",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDeckService)
			tt.setupMock(mockService)
			router := setupDeckRouter(handlers.NewDeckHandler(mockService))

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
