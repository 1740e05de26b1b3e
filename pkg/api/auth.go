package api

// EnrollRequest представляет запрос на регистрацию устройства.
// EnrollmentKey содержит общий ключ регистрации, выданный администратором.
type EnrollRequest struct {
	DeviceName    string `json:"device_name"`    // человекочитаемое имя устройства
	EnrollmentKey string `json:"enrollment_key"` // ключ регистрации (проверяется по bcrypt-хешу)
}

// EnrollResponse представляет ответ на успешную регистрацию устройства.
type EnrollResponse struct {
	DeviceID     string `json:"device_id"`     // UUID устройства, компонент векторных часов
	DeviceSecret string `json:"device_secret"` // секрет для получения токенов
}

// TokenRequest представляет запрос access-токена устройством.
type TokenRequest struct {
	DeviceID     string `json:"device_id"`
	DeviceSecret string `json:"device_secret"`
}

// TokenResponse представляет ответ с токеном доступа.
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	ExpiresIn   int64  `json:"expires_in"`   // время жизни в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
