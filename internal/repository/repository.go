// Package repository реализует коллекции записей сети regnet поверх порта
// реестра. Каждая коллекция сама вычисляет составной ключ хранилища из
// идентифицирующих полей записи и своего пространства имён.
package repository

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/keycodec"
	"github.com/mmeshcher/regnet-system/internal/ledger"
)

const (
	pendingNamespace  = "org.property-registration-network.regnet.lists.pending"
	identityNamespace = "org.property-registration-network.regnet.lists.identity"
	propertyNamespace = "org.property-registration-network.regnet.lists.property"
)

// ErrNotFound возвращается, если запись отсутствует в коллекции.
// Отсутствие — обычный исход, отличимый от сбоя хранилища.
var ErrNotFound = errors.New("record not found")

// getState читает запись коллекции по логическому ключу.
func getState(led ledger.Ledger, namespace, key string) ([]byte, error) {
	storeKey, err := storeKey(led, namespace, key)
	if err != nil {
		return nil, err
	}
	data, err := led.GetState(storeKey)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, nil
}

// putState записывает запись коллекции по логическому ключу,
// перекрывая существующее значение.
func putState(led ledger.Ledger, namespace, key string, data []byte) error {
	storeKey, err := storeKey(led, namespace, key)
	if err != nil {
		return err
	}
	if err := led.PutState(storeKey, data); err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

// storeKey превращает логический ключ в составной ключ хранилища.
func storeKey(led ledger.Ledger, namespace, key string) (string, error) {
	parts, err := keycodec.Decode(key)
	if err != nil {
		return "", err
	}
	storeKey, err := led.MakeCompositeKey(namespace, parts)
	if err != nil {
		return "", fmt.Errorf("make composite key: %w", err)
	}
	return storeKey, nil
}
