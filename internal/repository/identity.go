package repository

import (
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/keycodec"
	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/record"
)

// IdentityRepository — коллекция одобренных участников сети.
type IdentityRepository struct {
	led ledger.Ledger
}

// NewIdentityRepository создаёт коллекцию участников над портом реестра.
func NewIdentityRepository(led ledger.Ledger) *IdentityRepository {
	return &IdentityRepository{led: led}
}

// Key возвращает логический ключ участника по его идентифицирующим полям.
func (r *IdentityRepository) Key(name, idNumber string) string {
	return keycodec.Encode(name, idNumber)
}

// StoreKey возвращает составной ключ хранилища для логического ключа
// участника. Используется как непрозрачная ссылка владельца в записи
// собственности.
func (r *IdentityRepository) StoreKey(key string) (string, error) {
	return storeKey(r.led, identityNamespace, key)
}

// Get возвращает участника по логическому ключу или ErrNotFound.
func (r *IdentityRepository) Get(key string) (*model.Identity, error) {
	data, err := getState(r.led, identityNamespace, key)
	if err != nil {
		return nil, err
	}
	identity, err := record.UnmarshalIdentity(data)
	if err != nil {
		return nil, fmt.Errorf("identity %s: %w", key, err)
	}
	return identity, nil
}

// GetByStoreKey возвращает участника по ссылке-ключу хранилища,
// например по полю владельца записи собственности.
func (r *IdentityRepository) GetByStoreKey(ref string) (*model.Identity, error) {
	_, parts, err := r.led.SplitCompositeKey(ref)
	if err != nil {
		return nil, fmt.Errorf("split composite key: %w", err)
	}
	return r.Get(keycodec.Encode(parts...))
}

// Put вставляет или перезаписывает участника.
func (r *IdentityRepository) Put(identity *model.Identity) error {
	data, err := record.MarshalIdentity(identity)
	if err != nil {
		return fmt.Errorf("identity %s: %w", identity.ID, err)
	}
	return putState(r.led, identityNamespace, identity.ID, data)
}

// AtLeast сообщает, есть ли в коллекции хотя бы n участников,
// не дочитывая сканирование до конца.
func (r *IdentityRepository) AtLeast(n int) (bool, error) {
	it, err := r.led.ScanByPartialCompositeKey(identityNamespace, nil)
	if err != nil {
		return false, fmt.Errorf("scan identities: %w", err)
	}
	defer it.Close()

	count := 0
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			return false, fmt.Errorf("scan identities: %w", err)
		}
		count++
		if count >= n {
			return true, nil
		}
	}
	return count >= n, nil
}
