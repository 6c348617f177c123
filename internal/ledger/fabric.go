package ledger

import (
	"fmt"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/v2/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/v2/shim"
)

// Fabric адаптирует стаб чейнкода Hyperledger Fabric к порту Ledger.
type Fabric struct {
	stub shim.ChaincodeStubInterface
	id   cid.ClientIdentity
}

// NewFabric создаёт адаптер над стабом и идентичностью вызывающего.
func NewFabric(stub shim.ChaincodeStubInterface, id cid.ClientIdentity) *Fabric {
	return &Fabric{stub: stub, id: id}
}

// GetState возвращает значение ключа; для отсутствующего ключа — nil без ошибки.
func (f *Fabric) GetState(key string) ([]byte, error) {
	return f.stub.GetState(key)
}

// PutState записывает значение по ключу.
func (f *Fabric) PutState(key string, value []byte) error {
	return f.stub.PutState(key, value)
}

// MakeCompositeKey собирает составной ключ хранилища.
func (f *Fabric) MakeCompositeKey(namespace string, parts []string) (string, error) {
	return f.stub.CreateCompositeKey(namespace, parts)
}

// SplitCompositeKey разбирает составной ключ хранилища.
func (f *Fabric) SplitCompositeKey(key string) (string, []string, error) {
	return f.stub.SplitCompositeKey(key)
}

// ScanByPartialCompositeKey перебирает записи пространства имён по префиксу частей.
func (f *Fabric) ScanByPartialCompositeKey(namespace string, parts []string) (Iterator, error) {
	it, err := f.stub.GetStateByPartialCompositeKey(namespace, parts)
	if err != nil {
		return nil, err
	}
	return &fabricIterator{it: it}, nil
}

// CallerIdentity возвращает организацию (MSP ID) и принципала вызывающего.
func (f *Fabric) CallerIdentity() (string, string, error) {
	org, err := f.id.GetMSPID()
	if err != nil {
		return "", "", fmt.Errorf("caller msp id: %w", err)
	}
	principal, err := f.id.GetID()
	if err != nil {
		return "", "", fmt.Errorf("caller id: %w", err)
	}
	return org, principal, nil
}

// EmitEvent публикует событие транзакции.
func (f *Fabric) EmitEvent(name string, payload []byte) error {
	return f.stub.SetEvent(name, payload)
}

// TxTimestamp возвращает детерминированную метку времени транзакции.
// Она одинакова на всех пирах, в отличие от локальных часов.
func (f *Fabric) TxTimestamp() (time.Time, error) {
	ts, err := f.stub.GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("tx timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

type fabricIterator struct {
	it shim.StateQueryIteratorInterface
}

func (f *fabricIterator) HasNext() bool {
	return f.it.HasNext()
}

func (f *fabricIterator) Next() (*KV, error) {
	kv, err := f.it.Next()
	if err != nil {
		return nil, err
	}
	return &KV{Key: kv.Key, Value: kv.Value}, nil
}

func (f *fabricIterator) Close() error {
	return f.it.Close()
}
