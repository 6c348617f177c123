package repository

import (
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/record"
)

// PendingRepository — коллекция ещё не одобренных заявок. Заявка хранится
// под тем же логическим ключом, который получит одобренная запись, но в
// своём пространстве имён. Заявки не удаляются: повторное одобрение
// отсекается проверкой коллекции одобренных записей.
type PendingRepository struct {
	led ledger.Ledger
}

// NewPendingRepository создаёт коллекцию заявок над портом реестра.
func NewPendingRepository(led ledger.Ledger) *PendingRepository {
	return &PendingRepository{led: led}
}

// Get возвращает заявку по логическому ключу или ErrNotFound.
func (r *PendingRepository) Get(key string) (*model.PendingRequest, error) {
	data, err := getState(r.led, pendingNamespace, key)
	if err != nil {
		return nil, err
	}
	request, err := record.UnmarshalPending(data)
	if err != nil {
		return nil, fmt.Errorf("pending request %s: %w", key, err)
	}
	return request, nil
}

// Put вставляет или перезаписывает заявку под её собственным ключом.
func (r *PendingRepository) Put(request *model.PendingRequest) error {
	key, err := request.Key()
	if err != nil {
		return fmt.Errorf("pending request: %w", err)
	}
	data, err := record.MarshalPending(request)
	if err != nil {
		return fmt.Errorf("pending request %s: %w", key, err)
	}
	return putState(r.led, pendingNamespace, key, data)
}
