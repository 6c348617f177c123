package repository

import (
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/keycodec"
	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/record"
)

// PropertyRepository — коллекция одобренных объектов собственности.
type PropertyRepository struct {
	led ledger.Ledger
}

// NewPropertyRepository создаёт коллекцию собственности над портом реестра.
func NewPropertyRepository(led ledger.Ledger) *PropertyRepository {
	return &PropertyRepository{led: led}
}

// Key возвращает логический ключ объекта по его идентификатору.
func (r *PropertyRepository) Key(propertyID string) string {
	return keycodec.Encode(propertyID)
}

// Get возвращает объект собственности по логическому ключу или ErrNotFound.
func (r *PropertyRepository) Get(key string) (*model.Property, error) {
	data, err := getState(r.led, propertyNamespace, key)
	if err != nil {
		return nil, err
	}
	property, err := record.UnmarshalProperty(data)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", key, err)
	}
	return property, nil
}

// Put вставляет или перезаписывает объект собственности.
func (r *PropertyRepository) Put(property *model.Property) error {
	data, err := record.MarshalProperty(property)
	if err != nil {
		return fmt.Errorf("property %s: %w", property.ID, err)
	}
	return putState(r.led, propertyNamespace, property.ID, data)
}
