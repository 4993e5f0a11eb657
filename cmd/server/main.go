package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/maynagashev/pokedeck/internal/handlers"
	appmiddleware "github.com/maynagashev/pokedeck/internal/middleware"
	"github.com/maynagashev/pokedeck/internal/repository"
	"github.com/maynagashev/pokedeck/internal/services"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 30 * time.Second
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db          *sqlx.DB
	authHandler *handlers.AuthHandler
	cardHandler *handlers.CardHandler
	deckHandler *handlers.DeckHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера PokeDeck...")

	// Загружаем .env, если он есть (удобно для локальной разработки)
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются флаги и переменные окружения")
	}

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	// Инициализация зависимостей
	deps, err := setupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	// Отложенное закрытие соединения с БД
	defer func() {
		if deps.db != nil {
			if closeErr := deps.db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
			}
		}
	}()

	// Настройка роутера
	r := setupRouter(cfg.JWTSecret, deps.authHandler, deps.cardHandler, deps.deckHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	// --- Запуск сервера --- //
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		log.Printf("Запуск HTTPS-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	} else {
		log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД
	deps.db, err = repository.NewPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}

	// 2. Создание репозиториев
	userRepo := repository.NewPostgresUserRepository(deps.db)
	cardRepo := repository.NewPostgresCardRepository(deps.db)
	deckRepo := repository.NewPostgresDeckRepository(deps.db)

	// 3. Создание сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	cardService := services.NewCardService(cardRepo)
	deckService := services.NewDeckService(deckRepo, cardRepo)

	// 4. Создание обработчиков
	deps.authHandler = handlers.NewAuthHandler(authService)
	deps.cardHandler = handlers.NewCardHandler(cardService)
	deps.deckHandler = handlers.NewDeckHandler(deckService)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	cardHandler *handlers.CardHandler,
	deckHandler *handlers.DeckHandler,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Маршруты --- //
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		// Публичные маршруты (регистрация, вход, каталог карт)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/sign-in", authHandler.SignIn)
		})
		r.Get("/cards", cardHandler.List)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			// Применяем middleware аутентификации ко всей группе
			r.Use(appmiddleware.NewAuthenticator(jwtSecret))

			r.Route("/decks", func(r chi.Router) {
				r.Post("/", deckHandler.Create)
				r.Get("/mine", deckHandler.ListMine)
				r.Get("/{deckID}", deckHandler.Get)
				r.Patch("/{deckID}", deckHandler.Update)
				r.Delete("/{deckID}", deckHandler.Delete)
			})
		})
	})
	return r
}
