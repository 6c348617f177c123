package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/regnet-system/internal/auth"
	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/repository"
	"github.com/mmeshcher/regnet-system/internal/validation"
)

// Users реализует транзакции роли участника: заявки, пополнение баланса и
// торговлю собственностью. Экземпляр создаётся на одну транзакцию и несёт
// её детерминированную метку времени.
type Users struct {
	led        ledger.Ledger
	guard      *auth.Guard
	pending    *repository.PendingRepository
	identities *repository.IdentityRepository
	properties *repository.PropertyRepository
	now        time.Time
}

// NewUsers создаёт сервис участника над портом реестра.
func NewUsers(led ledger.Ledger, guard *auth.Guard, now time.Time) *Users {
	return &Users{
		led:        led,
		guard:      guard,
		pending:    repository.NewPendingRepository(led),
		identities: repository.NewIdentityRepository(led),
		properties: repository.NewPropertyRepository(led),
		now:        now,
	}
}

// RequestNewIdentity подаёт заявку на регистрацию участника.
func (s *Users) RequestNewIdentity(name, email, phone, idNumber string) (*model.PendingRequest, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}

	key := s.identities.Key(name, idNumber)
	if _, err := s.pending.Get(key); err == nil {
		return nil, fmt.Errorf("%w: identity request %s", ErrAlreadyExists, key)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	identity, err := model.NewIdentity(key, name, email, phone, idNumber)
	if err != nil {
		return nil, err
	}
	request, err := model.NewPendingIdentity(identity, s.now)
	if err != nil {
		return nil, err
	}

	if err := s.pending.Put(request); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventIdentityRequested, request); err != nil {
		return nil, err
	}
	return request, nil
}

// RechargeBalance устанавливает баланс участника в номинал банковского
// токена. Семантика ваучера: баланс перезаписывается, а не накапливается.
func (s *Users) RechargeBalance(name, token, idNumber string) (*model.Identity, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}

	credit, err := validation.TokenCredit(token)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.Get(s.identities.Key(name, idNumber))
	if err != nil {
		return nil, err
	}

	identity.Balance = credit
	identity.UpdatedAt = s.now

	if err := s.identities.Put(identity); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventBalanceRecharged, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ViewIdentity возвращает одобренного участника.
func (s *Users) ViewIdentity(name, idNumber string) (*model.Identity, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}
	return s.identities.Get(s.identities.Key(name, idNumber))
}

// RequestProperty подаёт заявку на регистрацию объекта собственности за
// одобренным участником.
func (s *Users) RequestProperty(name, idNumber, propertyID string, price int64, status string) (*model.PendingRequest, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}

	parsedStatus, err := validation.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	identityKey := s.identities.Key(name, idNumber)
	if _, err := s.identities.Get(identityKey); err != nil {
		return nil, err
	}

	propertyKey := s.properties.Key(propertyID)
	if _, err := s.pending.Get(propertyKey); err == nil {
		return nil, fmt.Errorf("%w: property request %s", ErrAlreadyExists, propertyKey)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.properties.Get(propertyKey); err == nil {
		return nil, fmt.Errorf("%w: property %s", ErrAlreadyExists, propertyKey)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	ownerRef, err := s.identities.StoreKey(identityKey)
	if err != nil {
		return nil, err
	}
	property, err := model.NewProperty(propertyKey, ownerRef, price, parsedStatus)
	if err != nil {
		return nil, err
	}
	property.CreatedAt = s.now

	request, err := model.NewPendingProperty(property, s.now)
	if err != nil {
		return nil, err
	}

	if err := s.pending.Put(request); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventPropertyRequested, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ViewProperty возвращает одобренный объект собственности.
func (s *Users) ViewProperty(propertyID string) (*model.Property, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}
	return s.properties.Get(s.properties.Key(propertyID))
}

// UpdatePropertyStatus меняет статус объекта. Разрешено только владельцу.
func (s *Users) UpdatePropertyStatus(name, idNumber, propertyID, status string) (*model.Property, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}

	parsedStatus, err := validation.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	ownerRef, err := s.identities.StoreKey(s.identities.Key(name, idNumber))
	if err != nil {
		return nil, err
	}
	property, err := s.properties.Get(s.properties.Key(propertyID))
	if err != nil {
		return nil, err
	}
	if property.Owner != ownerRef {
		return nil, fmt.Errorf("%w: only the owner may update property %s", auth.ErrUnauthorized, property.ID)
	}

	property.Status = parsedStatus
	property.UpdatedAt = s.now

	if err := s.properties.Put(property); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventPropertyUpdated, property); err != nil {
		return nil, err
	}
	return property, nil
}

// PurchaseProperty покупает выставленный на продажу объект. Все чтения
// выполняются до первой записи, суммы расчёта вычисляются из одного
// снимка: баланс продавца растёт на цену, баланс покупателя уменьшается
// на цену, владельцем становится покупатель, статус возвращается в
// registered.
func (s *Users) PurchaseProperty(propertyID, name, idNumber string) (*model.Property, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleUser); err != nil {
		return nil, err
	}

	enoughSellers, err := s.identities.AtLeast(2)
	if err != nil {
		return nil, err
	}
	if !enoughSellers {
		return nil, fmt.Errorf("%w: no seller available", ErrInvalidState)
	}

	property, err := s.properties.Get(s.properties.Key(propertyID))
	if err != nil {
		return nil, err
	}

	buyerKey := s.identities.Key(name, idNumber)
	buyer, err := s.identities.Get(buyerKey)
	if err != nil {
		return nil, err
	}

	if property.Status != model.StatusOnSale {
		return nil, fmt.Errorf("%w: property %s is not on sale", ErrInvalidState, property.ID)
	}
	if buyer.Balance < property.Price {
		return nil, fmt.Errorf("%w: balance %d, price %d", ErrInsufficientBalance, buyer.Balance, property.Price)
	}

	buyerRef, err := s.identities.StoreKey(buyerKey)
	if err != nil {
		return nil, err
	}
	if property.Owner == buyerRef {
		return nil, fmt.Errorf("%w: property %s already belongs to the buyer", ErrInvalidState, property.ID)
	}

	seller, err := s.identities.GetByStoreKey(property.Owner)
	if err != nil {
		return nil, err
	}

	// Снимок прочитан полностью, дальше только записи.
	seller.Balance += property.Price
	seller.UpdatedAt = s.now
	if err := s.identities.Put(seller); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventSellerSettled, seller); err != nil {
		return nil, err
	}

	buyer.Balance -= property.Price
	buyer.UpdatedAt = s.now
	if err := s.identities.Put(buyer); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventBuyerSettled, buyer); err != nil {
		return nil, err
	}

	property.Owner = buyerRef
	property.Status = model.StatusRegistered
	property.UpdatedAt = s.now
	if err := s.properties.Put(property); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventPropertyTransferred, property); err != nil {
		return nil, err
	}
	return property, nil
}
