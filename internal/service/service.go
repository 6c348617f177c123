// Package service реализует бизнес-транзакции сети регистрации
// собственности. Каждая транзакция — одна логическая единица работы:
// сначала проверка роли, затем все чтения состояния, затем записи,
// вычисленные из прочитанного снимка. Контроль конфликтов при фиксации
// выполняет платформа реестра.
package service

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/record"
)

var (
	// ErrAlreadyExists возвращается при повторной заявке или повторном
	// одобрении уже существующей записи.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidState возвращается, когда объект не в требуемом для
	// операции состоянии.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientBalance возвращается, когда баланс покупателя
	// меньше цены объекта.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Имена доменных событий, публикуемых транзакциями.
const (
	EventIdentityRequested   = "IdentityRequested"
	EventIdentityApproved    = "IdentityApproved"
	EventBalanceRecharged    = "BalanceRecharged"
	EventPropertyRequested   = "PropertyRequested"
	EventPropertyApproved    = "PropertyApproved"
	EventPropertyUpdated     = "PropertyUpdated"
	EventSellerSettled       = "SellerSettled"
	EventBuyerSettled        = "BuyerSettled"
	EventPropertyTransferred = "PropertyTransferred"
)

// emit публикует доменное событие с сериализованной записью в качестве
// полезной нагрузки.
func emit(led ledger.Ledger, name string, rec any) error {
	payload, err := record.Marshal(rec)
	if err != nil {
		return fmt.Errorf("event %s: %w", name, err)
	}
	if err := led.EmitEvent(name, payload); err != nil {
		return fmt.Errorf("event %s: %w", name, err)
	}
	return nil
}
