package models

import "github.com/npavlov/go-luhn-service/internal/catalog"

const (
	PassMessage = "Passes Luhn Check"
	FailMessage = "Fails Luhn Check"
)

type ValidateRequest struct {
	Number string `json:"number"`
}

type ValidateResponse struct {
	Number  string `json:"number"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type GenerateResponse struct {
	Cards []string `json:"cards"`
}

type CategoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewValidateResponse echoes number with its verdict.
func NewValidateResponse(number string, valid bool) ValidateResponse {
	message := FailMessage
	if valid {
		message = PassMessage
	}

	return ValidateResponse{
		Number:  number,
		Valid:   valid,
		Message: message,
	}
}
