package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/regnet-system/internal/auth"
	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/repository"
)

// Registrar реализует транзакции роли регистратора: одобрение заявок и
// просмотр записей. Экземпляр создаётся на одну транзакцию.
type Registrar struct {
	led        ledger.Ledger
	guard      *auth.Guard
	pending    *repository.PendingRepository
	identities *repository.IdentityRepository
	properties *repository.PropertyRepository
	now        time.Time
}

// NewRegistrar создаёт сервис регистратора над портом реестра.
func NewRegistrar(led ledger.Ledger, guard *auth.Guard, now time.Time) *Registrar {
	return &Registrar{
		led:        led,
		guard:      guard,
		pending:    repository.NewPendingRepository(led),
		identities: repository.NewIdentityRepository(led),
		properties: repository.NewPropertyRepository(led),
		now:        now,
	}
}

// ApproveIdentity одобряет заявку участника: запись получает нулевой
// баланс, принципала-одобрившего и метку создания. Заявка при этом не
// удаляется, повторное одобрение отсекает коллекция одобренных.
func (s *Registrar) ApproveIdentity(name, idNumber string) (*model.Identity, error) {
	approver, err := s.guard.RequireRole(s.led, auth.RoleRegistrar)
	if err != nil {
		return nil, err
	}

	key := s.identities.Key(name, idNumber)
	request, err := s.pending.Get(key)
	if err != nil {
		return nil, err
	}
	if request.Kind != model.KindIdentity {
		return nil, fmt.Errorf("%w: identity request %s", repository.ErrNotFound, key)
	}

	if _, err := s.identities.Get(key); err == nil {
		return nil, fmt.Errorf("%w: identity %s", ErrAlreadyExists, key)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	identity := request.Identity
	identity.Balance = 0
	identity.Approver = approver
	identity.CreatedAt = s.now

	if err := s.identities.Put(identity); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventIdentityApproved, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ApproveProperty одобряет заявку на регистрацию объекта собственности.
// Статус объект наследует из заявки.
func (s *Registrar) ApproveProperty(propertyID string) (*model.Property, error) {
	approver, err := s.guard.RequireRole(s.led, auth.RoleRegistrar)
	if err != nil {
		return nil, err
	}

	key := s.properties.Key(propertyID)
	request, err := s.pending.Get(key)
	if err != nil {
		return nil, err
	}
	if request.Kind != model.KindProperty {
		return nil, fmt.Errorf("%w: property request %s", repository.ErrNotFound, key)
	}

	if _, err := s.properties.Get(key); err == nil {
		return nil, fmt.Errorf("%w: property %s", ErrAlreadyExists, key)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	property := request.Property
	property.Approver = approver
	property.CreatedAt = s.now

	if err := s.properties.Put(property); err != nil {
		return nil, err
	}
	if err := emit(s.led, EventPropertyApproved, property); err != nil {
		return nil, err
	}
	return property, nil
}

// ViewIdentity возвращает одобренного участника.
func (s *Registrar) ViewIdentity(name, idNumber string) (*model.Identity, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleRegistrar); err != nil {
		return nil, err
	}
	return s.identities.Get(s.identities.Key(name, idNumber))
}

// ViewProperty возвращает одобренный объект собственности.
func (s *Registrar) ViewProperty(propertyID string) (*model.Property, error) {
	if _, err := s.guard.RequireRole(s.led, auth.RoleRegistrar); err != nil {
		return nil, err
	}
	return s.properties.Get(s.properties.Key(propertyID))
}
