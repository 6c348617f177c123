package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Составные ключи в памяти собираются по той же схеме, что и в Fabric:
// нулевой байт отделяет пространство имён и каждую часть.
const compositeKeySep = "\x00"

// Event хранит событие, опубликованное транзакцией.
type Event struct {
	Name    string
	Payload []byte
}

// Memory — реализация порта реестра в памяти. Используется в тестах и при
// локальном прогоне бизнес-логики без сети Fabric.
type Memory struct {
	mu        sync.RWMutex
	state     map[string][]byte
	events    []Event
	org       string
	principal string
	reads     int
	writes    int
}

// NewMemory создаёт пустой реестр с заданным вызывающим.
func NewMemory(org, principal string) *Memory {
	return &Memory{
		state:     make(map[string][]byte),
		org:       org,
		principal: principal,
	}
}

// SetCaller меняет вызывающего для последующих транзакций.
func (m *Memory) SetCaller(org, principal string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.org = org
	m.principal = principal
}

// GetState возвращает значение ключа; для отсутствующего ключа — nil без ошибки.
func (m *Memory) GetState(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	value, ok := m.state[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// PutState записывает значение по ключу.
func (m *Memory) PutState(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	stored := make([]byte, len(value))
	copy(stored, value)
	m.state[key] = stored
	return nil
}

// MakeCompositeKey собирает составной ключ хранилища. Нулевой байт в
// пространстве имён или частях запрещён, как и в CreateCompositeKey у Fabric.
func (m *Memory) MakeCompositeKey(namespace string, parts []string) (string, error) {
	if namespace == "" {
		return "", fmt.Errorf("empty namespace")
	}
	if strings.Contains(namespace, compositeKeySep) {
		return "", fmt.Errorf("namespace %q contains reserved separator", namespace)
	}
	key := compositeKeySep + namespace + compositeKeySep
	for _, part := range parts {
		if strings.Contains(part, compositeKeySep) {
			return "", fmt.Errorf("key part %q contains reserved separator", part)
		}
		key += part + compositeKeySep
	}
	return key, nil
}

// SplitCompositeKey разбирает составной ключ хранилища.
func (m *Memory) SplitCompositeKey(key string) (string, []string, error) {
	if !strings.HasPrefix(key, compositeKeySep) {
		return "", nil, fmt.Errorf("not a composite key: %q", key)
	}
	segments := strings.Split(strings.TrimPrefix(key, compositeKeySep), compositeKeySep)
	// Последний сегмент пустой из-за завершающего разделителя.
	if len(segments) < 2 || segments[len(segments)-1] != "" {
		return "", nil, fmt.Errorf("not a composite key: %q", key)
	}
	return segments[0], segments[1 : len(segments)-1], nil
}

// ScanByPartialCompositeKey перебирает записи пространства имён по префиксу
// частей. Итератор работает по снимку на момент вызова, перезапуск — новый
// вызов сканирования.
func (m *Memory) ScanByPartialCompositeKey(namespace string, parts []string) (Iterator, error) {
	prefix := compositeKeySep + namespace + compositeKeySep
	for _, part := range parts {
		prefix += part + compositeKeySep
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++

	var keys []string
	for key := range m.state {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	snapshot := make([]*KV, 0, len(keys))
	for _, key := range keys {
		value := make([]byte, len(m.state[key]))
		copy(value, m.state[key])
		snapshot = append(snapshot, &KV{Key: key, Value: value})
	}
	return &memoryIterator{items: snapshot}, nil
}

// CallerIdentity возвращает организацию и принципала текущего вызывающего.
func (m *Memory) CallerIdentity() (string, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.org, m.principal, nil
}

// EmitEvent сохраняет событие транзакции.
func (m *Memory) EmitEvent(name string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.events = append(m.events, Event{Name: name, Payload: stored})
	return nil
}

// Events возвращает все опубликованные события в порядке публикации.
func (m *Memory) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Reads возвращает количество обращений к состоянию на чтение.
func (m *Memory) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// Writes возвращает количество записей состояния.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Snapshot возвращает копию всего состояния реестра.
func (m *Memory) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.state))
	for key, value := range m.state {
		stored := make([]byte, len(value))
		copy(stored, value)
		out[key] = stored
	}
	return out
}

type memoryIterator struct {
	items []*KV
	pos   int
}

func (it *memoryIterator) HasNext() bool {
	return it.pos < len(it.items)
}

func (it *memoryIterator) Next() (*KV, error) {
	if it.pos >= len(it.items) {
		return nil, fmt.Errorf("iterator exhausted")
	}
	kv := it.items[it.pos]
	it.pos++
	return kv, nil
}

func (it *memoryIterator) Close() error {
	return nil
}
