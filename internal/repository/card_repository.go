package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maynagashev/pokedeck/internal/models"
)

// CardRepository определяет методы для чтения каталога карт.
// Каталог доступен только для чтения, методов записи у репозитория нет.
type CardRepository interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	GetExistingCardIDs(ctx context.Context, cardIDs []int64) ([]int64, error)
}

// postgresCardRepository реализует CardRepository для PostgreSQL.
type postgresCardRepository struct {
	db *sqlx.DB
}

// NewPostgresCardRepository создает новый экземпляр репозитория карт.
func NewPostgresCardRepository(db *sqlx.DB) CardRepository {
	return &postgresCardRepository{db: db}
}

// ListCards возвращает весь каталог карт, упорядоченный по номеру покедекса.
func (r *postgresCardRepository) ListCards(ctx context.Context) ([]models.Card, error) {
	query := `SELECT id, name, hp, attack, type, pokedex_number
	          FROM cards
	          ORDER BY pokedex_number ASC`

	cards := make([]models.Card, 0)
	if err := r.db.SelectContext(ctx, &cards, query); err != nil {
		log.Printf("[CardRepo] Ошибка при получении каталога карт: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение каталога карт: %w", err)
	}

	// URL изображения вычисляется по номеру покедекса, в БД он не хранится
	for i := range cards {
		cards[i].ImageURL = models.CardImageURL(cards[i].PokedexNumber)
	}

	log.Printf("[CardRepo] Получено %d карт из каталога", len(cards))
	return cards, nil
}

// GetExistingCardIDs возвращает подмножество переданных ID, для которых
// существуют записи в каталоге. Слой валидации сравнивает размеры множеств,
// чтобы обнаружить несуществующие карты.
func (r *postgresCardRepository) GetExistingCardIDs(ctx context.Context, cardIDs []int64) ([]int64, error) {
	query := `SELECT id FROM cards WHERE id = ANY($1)`

	existing := make([]int64, 0, len(cardIDs))
	if err := r.db.SelectContext(ctx, &existing, query, pq.Array(cardIDs)); err != nil {
		log.Printf("[CardRepo] Ошибка при проверке существования карт %v: %v", cardIDs, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на проверку существования карт: %w", err)
	}

	log.Printf("[CardRepo] Из %d запрошенных карт найдено %d", len(cardIDs), len(existing))
	return existing, nil
}
