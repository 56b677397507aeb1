package handler

import (
	"time"

	"github.com/GoArmGo/gcapi/internal/domain"
)

// Запросы. Указатели нужны, чтобы отличить непереданное поле от пустого.

type userRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type gcRequest struct {
	Name *string `json:"name"`
}

type productRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Stock    *int     `json:"stock"`
}

// Ответы. Пароль не попадает ни в один из них, is_verified только в /users/me.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID       uint      `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email"`
	JoinDate time.Time `json:"join_date"`
}

type meData struct {
	Username   string  `json:"username"`
	Email      *string `json:"email"`
	IsVerified bool    `json:"is_verified"`
	JoinDate   string  `json:"join_date"`
}

type meResponse struct {
	Status string `json:"status"`
	Data   meData `json:"data"`
}

type gcResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	OwnerID uint   `json:"owner_id"`
}

type productResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"image_url"`
}

// joinDateLayout формат даты в /users/me, например "Jan 02 2006"
const joinDateLayout = "Jan 02 2006"

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, JoinDate: u.JoinDate.UTC()}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func toMeResponse(u *domain.User) meResponse {
	return meResponse{
		Status: "ok",
		Data: meData{
			Username:   u.Username,
			Email:      u.Email,
			IsVerified: u.IsVerified,
			JoinDate:   u.JoinDate.UTC().Format(joinDateLayout),
		},
	}
}

func toGCResponse(gc *domain.GC) gcResponse {
	return gcResponse{ID: gc.ID, Name: gc.Name, OwnerID: gc.OwnerID}
}

func toGCResponses(gcs []domain.GC) []gcResponse {
	out := make([]gcResponse, 0, len(gcs))
	for i := range gcs {
		out = append(out, toGCResponse(&gcs[i]))
	}
	return out
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}
