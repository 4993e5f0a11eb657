package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maynagashev/pokedeck/internal/models"
)

// DeckRepository определяет методы для работы с колодами и их связями с картами.
// Все операции изменения (создание, замена состава, удаление) выполняются
// в одной транзакции: читатель никогда не видит колоду с числом карт,
// отличным от десяти. Доступ к колоде всегда ограничен ее владельцем:
// чужая колода неотличима от несуществующей.
type DeckRepository interface {
	CreateDeck(ctx context.Context, userID int64, name string, cardIDs []int64) (*models.Deck, error)
	ListDecksByUser(ctx context.Context, userID int64) ([]models.Deck, error)
	GetDeckForUser(ctx context.Context, deckID, userID int64) (*models.Deck, error)
	ReplaceDeck(ctx context.Context, deckID, userID int64, name string, cardIDs []int64) (*models.Deck, error)
	DeleteDeck(ctx context.Context, deckID, userID int64) error
}

// postgresDeckRepository реализует DeckRepository для PostgreSQL.
type postgresDeckRepository struct {
	db *sqlx.DB
}

// NewPostgresDeckRepository создает новый экземпляр репозитория колод.
func NewPostgresDeckRepository(db *sqlx.DB) DeckRepository {
	return &postgresDeckRepository{db: db}
}

// Запрос вставки связей: разворачиваем массив ID карт в строки deck_cards.
const insertDeckCardsQuery = `INSERT INTO deck_cards (deck_id, card_id) SELECT $1, unnest($2::bigint[])`

// CreateDeck создает колоду и все связи с картами в одной транзакции.
// Возвращает колоду вместе с данными ее карт.
func (r *postgresDeckRepository) CreateDeck(
	ctx context.Context,
	userID int64,
	name string,
	cardIDs []int64,
) (*models.Deck, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка начала транзакции создания колоды: %v", err)
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// Rollback после успешного Commit безопасен: вернет sql.ErrTxDone
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO decks (user_id, name) VALUES ($1, $2)
	          RETURNING id, user_id, name, created_at, updated_at`
	var deck models.Deck
	if err = tx.QueryRowxContext(ctx, query, userID, name).StructScan(&deck); err != nil {
		log.Printf("[DeckRepo] Ошибка создания колоды '%s' для пользователя %d: %v", name, userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание колоды: %w", err)
	}

	if _, err = tx.ExecContext(ctx, insertDeckCardsQuery, deck.ID, pq.Array(cardIDs)); err != nil {
		log.Printf("[DeckRepo] Ошибка создания связей колоды %d с картами: %v", deck.ID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание связей с картами: %w", err)
	}

	if deck.Cards, err = loadDeckCards(ctx, tx, deck.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		log.Printf("[DeckRepo] Ошибка фиксации транзакции создания колоды %d: %v", deck.ID, err)
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	log.Printf("[DeckRepo] Колода '%s' (ID: %d) успешно создана для пользователя %d", deck.Name, deck.ID, userID)
	return &deck, nil
}

// ListDecksByUser возвращает все колоды пользователя вместе с данными карт.
func (r *postgresDeckRepository) ListDecksByUser(ctx context.Context, userID int64) ([]models.Deck, error) {
	query := `SELECT id, user_id, name, created_at, updated_at FROM decks WHERE user_id=$1 ORDER BY id`

	decks := make([]models.Deck, 0)
	if err := r.db.SelectContext(ctx, &decks, query, userID); err != nil {
		log.Printf("[DeckRepo] Ошибка при получении колод пользователя %d: %v", userID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение колод: %w", err)
	}

	for i := range decks {
		cards, err := loadDeckCards(ctx, r.db, decks[i].ID)
		if err != nil {
			return nil, err
		}
		decks[i].Cards = cards
	}

	log.Printf("[DeckRepo] Получено %d колод пользователя %d", len(decks), userID)
	return decks, nil
}

// GetDeckForUser находит колоду по ID, принадлежащую указанному пользователю.
// Чужая или несуществующая колода одинаково дает ErrDeckNotFound.
func (r *postgresDeckRepository) GetDeckForUser(ctx context.Context, deckID, userID int64) (*models.Deck, error) {
	query := `SELECT id, user_id, name, created_at, updated_at FROM decks WHERE id=$1 AND user_id=$2`

	var deck models.Deck
	err := r.db.GetContext(ctx, &deck, query, deckID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[DeckRepo] Колода %d не найдена для пользователя %d", deckID, userID)
			return nil, ErrDeckNotFound
		}
		log.Printf("[DeckRepo] Ошибка при поиске колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение колоды: %w", err)
	}

	if deck.Cards, err = loadDeckCards(ctx, r.db, deck.ID); err != nil {
		return nil, err
	}

	log.Printf("[DeckRepo] Найдена колода '%s' (ID: %d) пользователя %d", deck.Name, deck.ID, userID)
	return &deck, nil
}

// ReplaceDeck атомарно обновляет имя колоды и целиком заменяет набор ее карт.
// Замена связей (удаление всех старых и вставка новых) и обновление имени
// выполняются в одной транзакции, промежуточное состояние снаружи не видно.
// Если колода за это время была удалена или принадлежит другому пользователю,
// возвращает ErrDeckNotFound.
func (r *postgresDeckRepository) ReplaceDeck(
	ctx context.Context,
	deckID, userID int64,
	name string,
	cardIDs []int64,
) (*models.Deck, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка начала транзакции обновления колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Обновление с проверкой владельца: 0 затронутых строк означает,
	// что колоды нет или она принадлежит другому пользователю
	res, err := tx.ExecContext(ctx,
		`UPDATE decks SET name=$1, updated_at=now() WHERE id=$2 AND user_id=$3`,
		name, deckID, userID)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка обновления колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на обновление колоды: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения числа затронутых строк: %w", err)
	}
	if affected == 0 {
		log.Printf("[DeckRepo] Колода %d не найдена для пользователя %d при обновлении", deckID, userID)
		return nil, ErrDeckNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id=$1`, deckID); err != nil {
		log.Printf("[DeckRepo] Ошибка удаления старых связей колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на удаление связей с картами: %w", err)
	}

	if _, err = tx.ExecContext(ctx, insertDeckCardsQuery, deckID, pq.Array(cardIDs)); err != nil {
		log.Printf("[DeckRepo] Ошибка вставки новых связей колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание связей с картами: %w", err)
	}

	var deck models.Deck
	err = tx.GetContext(ctx, &deck,
		`SELECT id, user_id, name, created_at, updated_at FROM decks WHERE id=$1`, deckID)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка чтения обновленной колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение колоды: %w", err)
	}

	if deck.Cards, err = loadDeckCards(ctx, tx, deck.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		log.Printf("[DeckRepo] Ошибка фиксации транзакции обновления колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	log.Printf("[DeckRepo] Колода %d пользователя %d успешно обновлена", deckID, userID)
	return &deck, nil
}

// DeleteDeck удаляет колоду и все ее связи с картами в одной транзакции.
// Удаление ограничено владельцем колоды.
func (r *postgresDeckRepository) DeleteDeck(ctx context.Context, deckID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка начала транзакции удаления колоды %d: %v", deckID, err)
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Сначала связи (с проверкой владельца через decks), затем сама колода
	_, err = tx.ExecContext(ctx,
		`DELETE FROM deck_cards USING decks
		 WHERE deck_cards.deck_id = decks.id AND decks.id=$1 AND decks.user_id=$2`,
		deckID, userID)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка удаления связей колоды %d: %v", deckID, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление связей с картами: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id=$1 AND user_id=$2`, deckID, userID)
	if err != nil {
		log.Printf("[DeckRepo] Ошибка удаления колоды %d: %v", deckID, err)
		return fmt.Errorf("ошибка выполнения запроса на удаление колоды: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа затронутых строк: %w", err)
	}
	if affected == 0 {
		log.Printf("[DeckRepo] Колода %d не найдена для пользователя %d при удалении", deckID, userID)
		return ErrDeckNotFound
	}

	if err = tx.Commit(); err != nil {
		log.Printf("[DeckRepo] Ошибка фиксации транзакции удаления колоды %d: %v", deckID, err)
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	log.Printf("[DeckRepo] Колода %d пользователя %d успешно удалена", deckID, userID)
	return nil
}

// loadDeckCards загружает карты колоды. Принимает и *sqlx.DB, и *sqlx.Tx,
// чтобы чтение могло выполняться внутри той же транзакции, что и запись.
func loadDeckCards(ctx context.Context, q sqlx.QueryerContext, deckID int64) ([]models.Card, error) {
	query := `SELECT c.id, c.name, c.hp, c.attack, c.type, c.pokedex_number
	          FROM cards c
	          JOIN deck_cards dc ON dc.card_id = c.id
	          WHERE dc.deck_id = $1
	          ORDER BY c.pokedex_number ASC`

	cards := make([]models.Card, 0)
	if err := sqlx.SelectContext(ctx, q, &cards, query, deckID); err != nil {
		log.Printf("[DeckRepo] Ошибка при загрузке карт колоды %d: %v", deckID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение карт колоды: %w", err)
	}

	for i := range cards {
		cards[i].ImageURL = models.CardImageURL(cards[i].PokedexNumber)
	}
	return cards, nil
}

// Кастомная ошибка репозитория колод.
var (
	ErrDeckNotFound = errors.New("колода не найдена")
)
