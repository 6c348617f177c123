package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mmeshcher/regnet-system/internal/auth"
	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/repository"
	"github.com/mmeshcher/regnet-system/internal/validation"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testGuard() *auth.Guard {
	return auth.NewGuard("usersMSP", "registrarMSP")
}

// registerIdentity проводит участника через заявку и одобрение.
func registerIdentity(t *testing.T, led *ledger.Memory, name, idNumber string) *model.Identity {
	t.Helper()
	guard := testGuard()

	led.SetCaller("usersMSP", "user-"+name)
	if _, err := NewUsers(led, guard, testNow).RequestNewIdentity(name, name+"@example.com", "555-0100", idNumber); err != nil {
		t.Fatalf("RequestNewIdentity(%s): %v", name, err)
	}

	led.SetCaller("registrarMSP", "registrar-1")
	identity, err := NewRegistrar(led, guard, testNow).ApproveIdentity(name, idNumber)
	if err != nil {
		t.Fatalf("ApproveIdentity(%s): %v", name, err)
	}

	led.SetCaller("usersMSP", "user-"+name)
	return identity
}

// registerProperty проводит объект через заявку и одобрение.
func registerProperty(t *testing.T, led *ledger.Memory, name, idNumber, propertyID string, price int64, status string) *model.Property {
	t.Helper()
	guard := testGuard()

	led.SetCaller("usersMSP", "user-"+name)
	if _, err := NewUsers(led, guard, testNow).RequestProperty(name, idNumber, propertyID, price, status); err != nil {
		t.Fatalf("RequestProperty(%s): %v", propertyID, err)
	}

	led.SetCaller("registrarMSP", "registrar-1")
	property, err := NewRegistrar(led, guard, testNow).ApproveProperty(propertyID)
	if err != nil {
		t.Fatalf("ApproveProperty(%s): %v", propertyID, err)
	}

	led.SetCaller("usersMSP", "user-"+name)
	return property
}

func TestRequestNewIdentityDuplicate(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	svc := NewUsers(led, testGuard(), testNow)

	if _, err := svc.RequestNewIdentity("Alice", "alice@example.com", "555-0100", "A123"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := svc.RequestNewIdentity("Alice", "alice@example.com", "555-0100", "A123")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserTransactionsRejectWrongRoleBeforeStorage(t *testing.T) {
	led := ledger.NewMemory("registrarMSP", "registrar-1")
	svc := NewUsers(led, testGuard(), testNow)

	calls := []struct {
		name string
		call func() error
	}{
		{name: "request identity", call: func() error {
			_, err := svc.RequestNewIdentity("Alice", "alice@example.com", "555-0100", "A123")
			return err
		}},
		{name: "recharge", call: func() error {
			_, err := svc.RechargeBalance("Alice", "upg500", "A123")
			return err
		}},
		{name: "view identity", call: func() error {
			_, err := svc.ViewIdentity("Alice", "A123")
			return err
		}},
		{name: "request property", call: func() error {
			_, err := svc.RequestProperty("Alice", "A123", "P1", 400, "onSale")
			return err
		}},
		{name: "view property", call: func() error {
			_, err := svc.ViewProperty("P1")
			return err
		}},
		{name: "update property", call: func() error {
			_, err := svc.UpdatePropertyStatus("Alice", "A123", "P1", "onSale")
			return err
		}},
		{name: "purchase property", call: func() error {
			_, err := svc.PurchaseProperty("P1", "Alice", "A123")
			return err
		}},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, auth.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}

	// Ни одна отклонённая транзакция не коснулась состояния.
	if led.Reads() != 0 || led.Writes() != 0 {
		t.Fatalf("unauthorized calls touched storage: %d reads, %d writes", led.Reads(), led.Writes())
	}
}

func TestRechargeBalance(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	svc := NewUsers(led, testGuard(), testNow)

	identity, err := svc.RechargeBalance("Alice", "upg500", "A123")
	if err != nil {
		t.Fatalf("RechargeBalance: %v", err)
	}
	if identity.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", identity.Balance)
	}

	// Семантика ваучера: повторное пополнение перезаписывает баланс,
	// а не прибавляет к нему.
	identity, err = svc.RechargeBalance("Alice", "upg100", "A123")
	if err != nil {
		t.Fatalf("RechargeBalance: %v", err)
	}
	if identity.Balance != 100 {
		t.Fatalf("recharge must overwrite balance, got %d", identity.Balance)
	}
}

func TestRechargeBalanceFailures(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	svc := NewUsers(led, testGuard(), testNow)

	if _, err := svc.RechargeBalance("Alice", "upg200", "A123"); !errors.Is(err, validation.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.RechargeBalance("Bob", "upg500", "B456"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestPropertyFailures(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	svc := NewUsers(led, testGuard(), testNow)

	if _, err := svc.RequestProperty("Alice", "A123", "P1", 400, "sold"); !errors.Is(err, validation.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.RequestProperty("Bob", "B456", "P1", 400, "onSale"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unregistered owner, got %v", err)
	}

	if _, err := svc.RequestProperty("Alice", "A123", "P1", 400, "onSale"); err != nil {
		t.Fatalf("RequestProperty: %v", err)
	}
	if _, err := svc.RequestProperty("Alice", "A123", "P1", 400, "onSale"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for pending duplicate, got %v", err)
	}
}

func TestUpdatePropertyStatusByOwner(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "registered")
	svc := NewUsers(led, testGuard(), testNow)

	property, err := svc.UpdatePropertyStatus("Alice", "A123", "P1", "onSale")
	if err != nil {
		t.Fatalf("UpdatePropertyStatus: %v", err)
	}
	if property.Status != model.StatusOnSale {
		t.Fatalf("expected onSale, got %q", property.Status)
	}
}

func TestUpdatePropertyStatusNonOwner(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerIdentity(t, led, "Bob", "B456")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "registered")

	before := led.Snapshot()
	led.SetCaller("usersMSP", "user-bob")
	svc := NewUsers(led, testGuard(), testNow)

	_, err := svc.UpdatePropertyStatus("Bob", "B456", "P1", "onSale")
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !reflect.DeepEqual(before, led.Snapshot()) {
		t.Fatalf("state changed after rejected update")
	}
}

func TestPurchaseProperty(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerIdentity(t, led, "Bob", "B456")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "onSale")

	guard := testGuard()
	users := NewUsers(led, guard, testNow)
	if _, err := users.RechargeBalance("Alice", "upg100", "A123"); err != nil {
		t.Fatalf("recharge seller: %v", err)
	}

	led.SetCaller("usersMSP", "user-bob")
	if _, err := users.RechargeBalance("Bob", "upg500", "B456"); err != nil {
		t.Fatalf("recharge buyer: %v", err)
	}

	property, err := users.PurchaseProperty("P1", "Bob", "B456")
	if err != nil {
		t.Fatalf("PurchaseProperty: %v", err)
	}
	if property.Status != model.StatusRegistered {
		t.Fatalf("expected registered after purchase, got %q", property.Status)
	}

	seller, err := users.ViewIdentity("Alice", "A123")
	if err != nil {
		t.Fatalf("ViewIdentity seller: %v", err)
	}
	buyer, err := users.ViewIdentity("Bob", "B456")
	if err != nil {
		t.Fatalf("ViewIdentity buyer: %v", err)
	}

	// Сумма балансов сохраняется: 100+500 до сделки, 500+100 после.
	if seller.Balance != 500 {
		t.Fatalf("seller balance = %d, want 500", seller.Balance)
	}
	if buyer.Balance != 100 {
		t.Fatalf("buyer balance = %d, want 100", buyer.Balance)
	}
	if seller.Balance+buyer.Balance != 600 {
		t.Fatalf("balance sum not conserved: %d", seller.Balance+buyer.Balance)
	}

	identities := repository.NewIdentityRepository(led)
	buyerRef, err := identities.StoreKey(identities.Key("Bob", "B456"))
	if err != nil {
		t.Fatalf("StoreKey: %v", err)
	}
	if property.Owner != buyerRef {
		t.Fatalf("property owner not transferred to buyer")
	}

	var names []string
	for _, event := range led.Events() {
		names = append(names, event.Name)
	}
	want := []string{EventSellerSettled, EventBuyerSettled, EventPropertyTransferred}
	if len(names) < 3 || !reflect.DeepEqual(names[len(names)-3:], want) {
		t.Fatalf("unexpected purchase events: %v", names)
	}
}

func TestPurchasePropertyInsufficientBalance(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerIdentity(t, led, "Bob", "B456")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "onSale")

	users := NewUsers(led, testGuard(), testNow)
	led.SetCaller("usersMSP", "user-bob")
	if _, err := users.RechargeBalance("Bob", "upg100", "B456"); err != nil {
		t.Fatalf("recharge buyer: %v", err)
	}

	before := led.Snapshot()
	_, err := users.PurchaseProperty("P1", "Bob", "B456")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	// Ни одной частичной записи после отклонённой покупки.
	if !reflect.DeepEqual(before, led.Snapshot()) {
		t.Fatalf("state changed after rejected purchase")
	}
}

func TestPurchasePropertyNotOnSale(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerIdentity(t, led, "Bob", "B456")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "registered")

	users := NewUsers(led, testGuard(), testNow)
	led.SetCaller("usersMSP", "user-bob")
	if _, err := users.RechargeBalance("Bob", "upg500", "B456"); err != nil {
		t.Fatalf("recharge buyer: %v", err)
	}

	if _, err := users.PurchaseProperty("P1", "Bob", "B456"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestPurchasePropertyByCurrentOwner(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerIdentity(t, led, "Bob", "B456")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "onSale")

	users := NewUsers(led, testGuard(), testNow)
	if _, err := users.RechargeBalance("Alice", "upg500", "A123"); err != nil {
		t.Fatalf("recharge owner: %v", err)
	}

	before := led.Snapshot()
	_, err := users.PurchaseProperty("P1", "Alice", "A123")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !reflect.DeepEqual(before, led.Snapshot()) {
		t.Fatalf("state changed after rejected purchase")
	}
	// Баланс владельца не тронут: оба плеча расчёта вели бы к одной записи.
	alice, err := users.ViewIdentity("Alice", "A123")
	if err != nil {
		t.Fatalf("view owner: %v", err)
	}
	if alice.Balance != 500 {
		t.Fatalf("owner balance = %d, want 500", alice.Balance)
	}
}

func TestPurchasePropertyRequiresSecondIdentity(t *testing.T) {
	led := ledger.NewMemory("usersMSP", "user-alice")
	registerIdentity(t, led, "Alice", "A123")
	registerProperty(t, led, "Alice", "A123", "P1", 400, "onSale")

	users := NewUsers(led, testGuard(), testNow)
	if _, err := users.PurchaseProperty("P1", "Alice", "A123"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
