package payloads

// UserRegisteredPayload публикуется после успешной регистрации пользователя
// и используется воркером для отправки письма с подтверждением.
type UserRegisteredPayload struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
