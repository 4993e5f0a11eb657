package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maynagashev/pokedeck/internal/models"
	"github.com/maynagashev/pokedeck/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	// SignUp регистрирует пользователя и сразу выдает токен сессии.
	SignUp(email, username, password string) (string, *models.User, error)
	// SignIn проверяет учетные данные и выдает токен сессии.
	SignIn(email, password string) (string, *models.User, error)
}

// Константы для JWT.
const (
	tokenTTL    = 7 * 24 * time.Hour // Время жизни токена - 7 дней
	tokenIssuer = "pokedeck-server"
)

// Структура для пользовательских данных в JWT (claims).
type jwtClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo  repository.UserRepository // Зависимость от репозитория пользователей
	jwtSecret string                    // Секрет подписи приходит из конфигурации, не из глобальной переменной
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: jwtSecret}
}

// SignUp регистрирует нового пользователя и возвращает токен вместе с публичной
// проекцией пользователя (хеш пароля наружу не отдается, см. тэг json:"-").
func (s *authService) SignUp(email, username, password string) (string, *models.User, error) {
	ctx := context.Background() // Используем фоновый контекст для операций сервиса

	// Хешируем пароль (bcrypt.DefaultCost = 10 раундов)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[AuthService] Ошибка хеширования пароля для '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при хешировании пароля")
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	// Создаем пользователя через репозиторий
	userID, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			log.Printf("[AuthService] Попытка регистрации с занятым email: %s", email)
			return "", nil, ErrEmailTaken // Возвращаем ошибку слоя сервиса
		}
		log.Printf("[AuthService] Непредвиденная ошибка репозитория при регистрации '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при создании пользователя")
	}
	user.ID = userID

	token, err := s.generateJWT(user.ID, user.Email)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован (ID: %d)", email, userID)
	return token, user, nil
}

// SignIn аутентифицирует пользователя и возвращает JWT токен.
// Несуществующий email и неверный пароль дают одну и ту же ошибку,
// чтобы по ответу нельзя было перечислять зарегистрированные адреса.
func (s *authService) SignIn(email, password string) (string, *models.User, error) {
	ctx := context.Background()

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Попытка входа с незарегистрированным email: %s", email)
			return "", nil, ErrInvalidCredentials // Общая ошибка для неизвестного email и неверного пароля
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	// Сравниваем предоставленный пароль с хешем из базы данных
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", email)
		return "", nil, ErrInvalidCredentials // Общая ошибка
	}

	token, err := s.generateJWT(user.ID, user.Email)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", email, err)
		return "", nil, errors.New("внутренняя ошибка сервера при генерации токена")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", email)
	return token, user, nil
}

// generateJWT создает и подписывает JWT токен, привязанный к (userID, email).
func (s *authService) generateJWT(userID int64, email string) (string, error) {
	claims := jwtClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)), // Время истечения
			IssuedAt:  jwt.NewNumericDate(time.Now()),               // Время выдачи
			NotBefore: jwt.NewNumericDate(time.Now()),               // Время, с которого токен валиден
			Issuer:    tokenIssuer,                                  // Источник токена
			ID:        uuid.NewString(),                             // Уникальный идентификатор токена
		},
	}

	// Создаем токен с нашими claims и методом подписи HS256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}

	return signedToken, nil
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrEmailTaken         = errors.New("email уже зарегистрирован")
)
