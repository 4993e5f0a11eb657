package models

import "time"

// Deck представляет колоду пользователя.
// Инвариант: в любой наблюдаемый извне момент колода связана ровно
// с десятью различными картами. Связи создаются и удаляются только
// целиком, вместе с изменением состава колоды.
type Deck struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Cards     []Card    `db:"-" json:"cards"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateDeckRequest представляет тело запроса на создание колоды.
type CreateDeckRequest struct {
	Name  string  `json:"name"`
	Cards []int64 `json:"cards"`
}

// UpdateDeckRequest представляет тело запроса на частичное обновление колоды.
// Отсутствующее поле означает "оставить без изменений".
type UpdateDeckRequest struct {
	Name  *string `json:"name"`
	Cards []int64 `json:"cards"`
}
