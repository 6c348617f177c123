// Package ledger определяет узкий порт платформы распределённого реестра
// и его реализации. Консенсус, фиксация блоков и контроль конфликтов
// выполняются самой платформой; здесь только доступ к её API.
package ledger

// KV представляет пару ключ-значение, возвращаемую сканированием.
type KV struct {
	Key   string
	Value []byte
}

// Iterator лениво перебирает результаты сканирования по частичному ключу.
type Iterator interface {
	HasNext() bool
	Next() (*KV, error)
	Close() error
}

// Ledger описывает контракт платформы реестра, используемый коллекциями
// и бизнес-логикой. Отсутствующий ключ — обычный исход: GetState
// возвращает пустое значение без ошибки, различение делает вызывающий.
type Ledger interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	MakeCompositeKey(namespace string, parts []string) (string, error)
	SplitCompositeKey(key string) (string, []string, error)
	ScanByPartialCompositeKey(namespace string, parts []string) (Iterator, error)
	CallerIdentity() (org, principal string, err error)
	EmitEvent(name string, payload []byte) error
}
