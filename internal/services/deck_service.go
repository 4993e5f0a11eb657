package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/maynagashev/pokedeck/internal/models"
	"github.com/maynagashev/pokedeck/internal/repository"
)

// Размер колоды фиксирован: ровно десять различных карт.
const deckSize = 10

// DeckService определяет интерфейс для сервиса колод.
// Сервис отвечает за проверку состава колоды до обращения к хранилищу.
type DeckService interface {
	CreateDeck(userID int64, name string, cardIDs []int64) (*models.Deck, error)
	ListDecks(userID int64) ([]models.Deck, error)
	GetDeck(deckID, userID int64) (*models.Deck, error)
	// UpdateDeck выполняет частичное обновление: nil-имя и nil-список карт
	// означают "оставить без изменений".
	UpdateDeck(deckID, userID int64, name *string, cardIDs []int64) (*models.Deck, error)
	DeleteDeck(deckID, userID int64) error
}

var _ DeckService = (*deckService)(nil) // Проверка соответствия интерфейсу

type deckService struct {
	deckRepo repository.DeckRepository
	cardRepo repository.CardRepository // Для проверки существования карт
}

// NewDeckService создает новый экземпляр сервиса колод.
func NewDeckService(deckRepo repository.DeckRepository, cardRepo repository.CardRepository) DeckService {
	return &deckService{deckRepo: deckRepo, cardRepo: cardRepo}
}

// CreateDeck проверяет состав колоды и создает ее вместе со связями карт.
func (s *deckService) CreateDeck(userID int64, name string, cardIDs []int64) (*models.Deck, error) {
	ctx := context.Background()

	trimmedName, err := validateDeckName(name)
	if err != nil {
		return nil, err
	}

	if err = s.validateDeckCards(ctx, cardIDs); err != nil {
		return nil, err
	}

	deck, err := s.deckRepo.CreateDeck(ctx, userID, trimmedName, cardIDs)
	if err != nil {
		log.Printf("[DeckService] Ошибка репозитория при создании колоды для пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при создании колоды")
	}

	log.Printf("[DeckService] Колода '%s' (ID: %d) создана для пользователя %d", deck.Name, deck.ID, userID)
	return deck, nil
}

// ListDecks возвращает все колоды пользователя.
func (s *deckService) ListDecks(userID int64) ([]models.Deck, error) {
	ctx := context.Background()

	decks, err := s.deckRepo.ListDecksByUser(ctx, userID)
	if err != nil {
		log.Printf("[DeckService] Ошибка репозитория при получении колод пользователя %d: %v", userID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении колод")
	}

	return decks, nil
}

// GetDeck возвращает колоду пользователя по ID.
func (s *deckService) GetDeck(deckID, userID int64) (*models.Deck, error) {
	ctx := context.Background()

	deck, err := s.deckRepo.GetDeckForUser(ctx, deckID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		log.Printf("[DeckService] Ошибка репозитория при получении колоды %d: %v", deckID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении колоды")
	}

	return deck, nil
}

// UpdateDeck частично обновляет колоду: непереданные поля сохраняют прежние
// значения. Проверка принадлежности выполняется до любой валидации полей,
// а ReplaceDeck повторно проверяет состояние колоды уже внутри транзакции,
// чтобы конкурентное удаление не осталось незамеченным.
func (s *deckService) UpdateDeck(deckID, userID int64, name *string, cardIDs []int64) (*models.Deck, error) {
	ctx := context.Background()

	current, err := s.deckRepo.GetDeckForUser(ctx, deckID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		log.Printf("[DeckService] Ошибка репозитория при получении колоды %d для обновления: %v", deckID, err)
		return nil, errors.New("внутренняя ошибка сервера при получении колоды")
	}

	newName := current.Name
	if name != nil {
		newName, err = validateDeckName(*name)
		if err != nil {
			return nil, err
		}
	}

	newCardIDs := cardIDs
	if newCardIDs == nil {
		// Состав не передан - сохраняем текущий набор карт
		newCardIDs = make([]int64, 0, len(current.Cards))
		for _, card := range current.Cards {
			newCardIDs = append(newCardIDs, card.ID)
		}
	} else if err = s.validateDeckCards(ctx, newCardIDs); err != nil {
		return nil, err
	}

	deck, err := s.deckRepo.ReplaceDeck(ctx, deckID, userID, newName, newCardIDs)
	if err != nil {
		if errors.Is(err, repository.ErrDeckNotFound) {
			// Колода исчезла между чтением и заменой (конкурентное удаление)
			return nil, ErrDeckNotFound
		}
		log.Printf("[DeckService] Ошибка репозитория при обновлении колоды %d: %v", deckID, err)
		return nil, errors.New("внутренняя ошибка сервера при обновлении колоды")
	}

	log.Printf("[DeckService] Колода %d пользователя %d обновлена", deckID, userID)
	return deck, nil
}

// DeleteDeck удаляет колоду пользователя вместе со связями карт.
func (s *deckService) DeleteDeck(deckID, userID int64) error {
	ctx := context.Background()

	if err := s.deckRepo.DeleteDeck(ctx, deckID, userID); err != nil {
		if errors.Is(err, repository.ErrDeckNotFound) {
			return ErrDeckNotFound
		}
		log.Printf("[DeckService] Ошибка репозитория при удалении колоды %d: %v", deckID, err)
		return errors.New("внутренняя ошибка сервера при удалении колоды")
	}

	log.Printf("[DeckService] Колода %d пользователя %d удалена", deckID, userID)
	return nil
}

// validateDeckName проверяет имя колоды и возвращает его без крайних пробелов.
func validateDeckName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrDeckNameEmpty
	}
	return trimmed, nil
}

// validateDeckCards проверяет состав колоды: ровно десять различных карт,
// каждая из которых существует в каталоге.
func (s *deckService) validateDeckCards(ctx context.Context, cardIDs []int64) error {
	if len(cardIDs) != deckSize {
		return ErrInvalidCardCount
	}

	seen := make(map[int64]struct{}, deckSize)
	for _, id := range cardIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateCard
		}
		seen[id] = struct{}{}
	}

	existing, err := s.cardRepo.GetExistingCardIDs(ctx, cardIDs)
	if err != nil {
		log.Printf("[DeckService] Ошибка репозитория при проверке существования карт: %v", err)
		return errors.New("внутренняя ошибка сервера при проверке карт")
	}
	// Частичное совпадение отклоняем целиком: несуществующие карты
	// не отбрасываются молча
	if len(existing) != deckSize {
		return ErrUnknownCard
	}

	return nil
}

// Кастомные ошибки сервиса колод.
var (
	ErrDeckNameEmpty    = errors.New("имя колоды не может быть пустым")
	ErrInvalidCardCount = errors.New("колода должна содержать ровно 10 карт")
	ErrDuplicateCard    = errors.New("карты в колоде не должны повторяться")
	ErrUnknownCard      = errors.New("одна или несколько карт не найдены в каталоге")
	ErrDeckNotFound     = errors.New("колода не найдена")
)
