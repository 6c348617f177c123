// Package validation содержит проверки входных данных транзакций.
package validation

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/model"
)

// ErrInvalidStatus возвращается для статуса вне перечисления.
var ErrInvalidStatus = errors.New("invalid property status")

// ErrInvalidToken возвращается для нераспознанного токена пополнения.
var ErrInvalidToken = errors.New("invalid bank transaction token")

// Токены пополнения — фиксированные ваучеры с номиналом.
var tokenCredits = map[string]int64{
	"upg100":  100,
	"upg500":  500,
	"upg1000": 1000,
}

// ParseStatus проверяет строку статуса и возвращает значение перечисления.
func ParseStatus(status string) (model.PropertyStatus, error) {
	switch model.PropertyStatus(status) {
	case model.StatusRegistered:
		return model.StatusRegistered, nil
	case model.StatusOnSale:
		return model.StatusOnSale, nil
	default:
		return "", fmt.Errorf("%w: %q, expected %q or %q", ErrInvalidStatus, status, model.StatusRegistered, model.StatusOnSale)
	}
}

// TokenCredit возвращает номинал токена пополнения.
func TokenCredit(token string) (int64, error) {
	credit, ok := tokenCredits[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return credit, nil
}
