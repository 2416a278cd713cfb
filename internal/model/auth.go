package model

// ActivityLevel — уровень активности из профиля (бэкенд по умолчанию ставит "sedentary").
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// SignupRequest — тело POST /auth/signup. Необязательные поля не отправляются, если не заданы.
type SignupRequest struct {
	Email         string        `json:"email"`
	Password      string        `json:"password"`
	DisplayName   string        `json:"display_name,omitempty"`
	HeightCm      *int          `json:"height_cm,omitempty"`
	WeightKg      *float64      `json:"weight_kg,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level,omitempty"`
}

// LoginRequest — тело POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — ответ signup и login: {status, user_id, token}.
type AuthResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Session возвращает пару, которую нужно сохранить в хранилище сессии.
func (r AuthResponse) Session() Session {
	return Session{Token: r.Token, UserID: r.UserID}
}
