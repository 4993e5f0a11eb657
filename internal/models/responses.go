package models

// ErrorResponse представляет тело любого ответа с ошибкой.
// Внутренние детали (текст ошибки БД, стектрейсы) сюда не попадают.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse представляет тело ответа с информационным сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse представляет тело ответа проверки работоспособности.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
