package domain

import (
	"time"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID         uint      `json:"id" db:"id" gorm:"primaryKey"`
	Username   string    `json:"username" db:"username" gorm:"size:20;uniqueIndex;not null"`
	Email      *string   `json:"email" db:"email" gorm:"size:200;uniqueIndex"`
	Password   string    `json:"-" db:"password" gorm:"size:100;not null"`
	IsVerified bool      `json:"-" db:"is_verified" gorm:"not null;default:false"`
	JoinDate   time.Time `json:"join_date" db:"join_date" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// EmailAddress возвращает email или пустую строку, если он не указан.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// OptionalString превращает пустую строку в nil (NULL в БД).
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UserPatch описывает частичное обновление пользователя:
// nil-поле означает, что значение не передано и не меняется.
type UserPatch struct {
	Username   *string
	Email      *string
	Password   *string
	IsVerified *bool
}

// Fields возвращает только переданные поля в виде колонка -> значение.
func (p UserPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.Email != nil {
		// пустой email снимает адрес с пользователя
		fields["email"] = OptionalString(*p.Email)
	}
	if p.Password != nil {
		fields["password"] = *p.Password
	}
	if p.IsVerified != nil {
		fields["is_verified"] = *p.IsVerified
	}
	return fields
}
