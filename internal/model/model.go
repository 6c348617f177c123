// Package model содержит доменные сущности сети регистрации собственности.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RecordKind указывает вид записи, сохранённой в реестре.
type RecordKind string

const (
	KindIdentity RecordKind = "identity"
	KindProperty RecordKind = "property"
	KindPending  RecordKind = "pending"
)

// PropertyStatus описывает статус объекта собственности.
type PropertyStatus string

const (
	StatusRegistered PropertyStatus = "registered"
	StatusOnSale     PropertyStatus = "onSale"
)

// Identity представляет одобренного участника сети и его баланс.
type Identity struct {
	ID        string    `json:"id"`
	IDNumber  string    `json:"idNumber"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Balance   int64     `json:"balance"`
	Approver  string    `json:"approver,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Extra хранит неизвестные поля исходной записи, чтобы не терять их
	// при эволюции схемы.
	Extra map[string]json.RawMessage `json:"-"`
}

// Property представляет объект собственности и ссылку на владельца.
type Property struct {
	ID        string         `json:"id"`
	Owner     string         `json:"owner"`
	Price     int64          `json:"price"`
	Status    PropertyStatus `json:"status"`
	Approver  string         `json:"approver,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PendingRequest представляет ещё не одобренную заявку пользователя.
// Kind определяет, какое из вложенных полей заполнено.
type PendingRequest struct {
	Kind      RecordKind `json:"kind"`
	Identity  *Identity  `json:"identity,omitempty"`
	Property  *Property  `json:"property,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

// NewIdentity создаёт запись участника, проверяя обязательные поля.
// Баланс и отметки одобрения заполняются позже, при одобрении заявки.
func NewIdentity(key, name, email, phone, idNumber string) (*Identity, error) {
	switch {
	case key == "":
		return nil, errors.New("identity key is required")
	case name == "":
		return nil, errors.New("identity name is required")
	case email == "":
		return nil, errors.New("identity email is required")
	case phone == "":
		return nil, errors.New("identity phone is required")
	case idNumber == "":
		return nil, errors.New("identity id number is required")
	}
	return &Identity{
		ID:       key,
		IDNumber: idNumber,
		Name:     name,
		Email:    email,
		Phone:    phone,
	}, nil
}

// NewProperty создаёт запись объекта собственности, проверяя обязательные поля.
func NewProperty(key, owner string, price int64, status PropertyStatus) (*Property, error) {
	switch {
	case key == "":
		return nil, errors.New("property key is required")
	case owner == "":
		return nil, errors.New("property owner is required")
	case price <= 0:
		return nil, errors.New("property price must be positive")
	}
	if status != StatusRegistered && status != StatusOnSale {
		return nil, fmt.Errorf("unknown property status %q", status)
	}
	return &Property{
		ID:     key,
		Owner:  owner,
		Price:  price,
		Status: status,
	}, nil
}

// NewPendingIdentity оборачивает запись участника в заявку на регистрацию.
func NewPendingIdentity(identity *Identity, requestedAt time.Time) (*PendingRequest, error) {
	if identity == nil {
		return nil, errors.New("pending request requires an identity")
	}
	return &PendingRequest{
		Kind:      KindIdentity,
		Identity:  identity,
		CreatedAt: requestedAt,
	}, nil
}

// NewPendingProperty оборачивает запись собственности в заявку на регистрацию.
func NewPendingProperty(property *Property, requestedAt time.Time) (*PendingRequest, error) {
	if property == nil {
		return nil, errors.New("pending request requires a property")
	}
	return &PendingRequest{
		Kind:      KindProperty,
		Property:  property,
		CreatedAt: requestedAt,
	}, nil
}

// Key возвращает составной ключ записи, под которым заявка хранится в реестре.
// Это тот же ключ, который получит одобренная запись в своей коллекции.
func (p *PendingRequest) Key() (string, error) {
	switch p.Kind {
	case KindIdentity:
		if p.Identity == nil {
			return "", errors.New("identity request without identity payload")
		}
		return p.Identity.ID, nil
	case KindProperty:
		if p.Property == nil {
			return "", errors.New("property request without property payload")
		}
		return p.Property.ID, nil
	default:
		return "", fmt.Errorf("unknown pending request kind %q", p.Kind)
	}
}
