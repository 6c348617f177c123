// Package record сериализует доменные записи в байтовые значения реестра
// и обратно, различая их по виду записи.
package record

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/model"
)

// ErrCorruptRecord возвращается, когда байты не являются корректной
// записью запрошенного вида.
var ErrCorruptRecord = errors.New("corrupt record")

// Marshal сериализует запись известного вида.
func Marshal(rec any) ([]byte, error) {
	switch v := rec.(type) {
	case *model.Identity:
		return MarshalIdentity(v)
	case *model.Property:
		return MarshalProperty(v)
	case *model.PendingRequest:
		return MarshalPending(v)
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

// Unmarshal восстанавливает запись указанного вида из байтов.
func Unmarshal(data []byte, kind model.RecordKind) (any, error) {
	switch kind {
	case model.KindIdentity:
		return UnmarshalIdentity(data)
	case model.KindProperty:
		return UnmarshalProperty(data)
	case model.KindPending:
		return UnmarshalPending(data)
	default:
		return nil, fmt.Errorf("unsupported record kind %q", kind)
	}
}

// MarshalIdentity сериализует запись участника.
func MarshalIdentity(identity *model.Identity) ([]byte, error) {
	return marshalWithExtra(identity, identity.Extra)
}

// UnmarshalIdentity восстанавливает запись участника из байтов.
func UnmarshalIdentity(data []byte) (*model.Identity, error) {
	var identity model.Identity
	extra, err := unmarshalWithExtra(data, &identity)
	if err != nil {
		return nil, err
	}
	identity.Extra = extra
	return &identity, nil
}

// MarshalProperty сериализует запись собственности.
func MarshalProperty(property *model.Property) ([]byte, error) {
	return marshalWithExtra(property, property.Extra)
}

// UnmarshalProperty восстанавливает запись собственности из байтов.
func UnmarshalProperty(data []byte) (*model.Property, error) {
	var property model.Property
	extra, err := unmarshalWithExtra(data, &property)
	if err != nil {
		return nil, err
	}
	property.Extra = extra
	return &property, nil
}

// MarshalPending сериализует заявку на регистрацию.
func MarshalPending(request *model.PendingRequest) ([]byte, error) {
	return marshalWithExtra(request, request.Extra)
}

// UnmarshalPending восстанавливает заявку на регистрацию из байтов и
// проверяет дискриминатор вида.
func UnmarshalPending(data []byte) (*model.PendingRequest, error) {
	var request model.PendingRequest
	extra, err := unmarshalWithExtra(data, &request)
	if err != nil {
		return nil, err
	}
	request.Extra = extra

	switch request.Kind {
	case model.KindIdentity:
		if request.Identity == nil {
			return nil, fmt.Errorf("%w: identity request without payload", ErrCorruptRecord)
		}
	case model.KindProperty:
		if request.Property == nil {
			return nil, fmt.Errorf("%w: property request without payload", ErrCorruptRecord)
		}
	default:
		return nil, fmt.Errorf("%w: unknown request kind %q", ErrCorruptRecord, request.Kind)
	}
	return &request, nil
}

// marshalWithExtra сериализует запись и дописывает сохранённые неизвестные
// поля, не перекрывая известные.
func marshalWithExtra(rec any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if len(extra) == 0 {
		return base, nil
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, fmt.Errorf("merge record fields: %w", err)
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// unmarshalWithExtra заполняет запись и возвращает поля исходного
// документа, не известные её схеме.
func unmarshalWithExtra(data []byte, rec any) (map[string]json.RawMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrCorruptRecord)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	known, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var knownKeys map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownKeys); err != nil {
		return nil, fmt.Errorf("merge record fields: %w", err)
	}
	for k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}
