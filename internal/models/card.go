package models

import "fmt"

// Базовый URL официальных спрайтов, номер покедекса подставляется в имя файла.
const spriteBaseURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"

// Card представляет карту из каталога. Каталог доступен только для чтения,
// записи создаются при наполнении БД и через API не изменяются.
type Card struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	HP            int    `db:"hp" json:"hp"`
	Attack        int    `db:"attack" json:"attack"`
	Type          string `db:"type" json:"type"`
	PokedexNumber int    `db:"pokedex_number" json:"pokedex_number"`
	// URL изображения не хранится в БД, а детерминированно вычисляется
	// по номеру покедекса (см. CardImageURL). Заполняется при чтении.
	ImageURL string `db:"-" json:"image_url"`
}

// CardImageURL возвращает URL изображения карты для указанного номера покедекса.
func CardImageURL(pokedexNumber int) string {
	return fmt.Sprintf("%s/%d.png", spriteBaseURL, pokedexNumber)
}
