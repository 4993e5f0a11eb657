package services

import (
	"context"
	"errors"
	"log"

	"github.com/maynagashev/pokedeck/internal/models"
	"github.com/maynagashev/pokedeck/internal/repository"
)

// CardService определяет интерфейс для сервиса каталога карт.
type CardService interface {
	ListCards() ([]models.Card, error)
}

var _ CardService = (*cardService)(nil) // Проверка соответствия интерфейсу

type cardService struct {
	cardRepo repository.CardRepository // Зависимость от репозитория карт
}

// NewCardService создает новый экземпляр сервиса каталога карт.
func NewCardService(cardRepo repository.CardRepository) CardService {
	return &cardService{cardRepo: cardRepo}
}

// ListCards возвращает каталог карт, упорядоченный по номеру покедекса.
func (s *cardService) ListCards() ([]models.Card, error) {
	ctx := context.Background()

	cards, err := s.cardRepo.ListCards(ctx)
	if err != nil {
		log.Printf("[CardService] Ошибка репозитория при получении каталога: %v", err)
		return nil, errors.New("внутренняя ошибка сервера при получении каталога карт")
	}

	log.Printf("[CardService] Успешно получен каталог из %d карт", len(cards))
	return cards, nil
}
