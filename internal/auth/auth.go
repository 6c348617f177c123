// Package auth сопоставляет подтверждённую организацию вызывающего с ролью
// транзакции. Проверка выполняется до любых обращений к состоянию.
package auth

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/regnet-system/internal/ledger"
)

// Role определяет роль, требуемую транзакцией.
type Role string

const (
	// RoleUser — роль участников: заявки и торговые операции.
	RoleUser Role = "user"
	// RoleRegistrar — роль регистратора: одобрение заявок.
	RoleRegistrar Role = "registrar"
)

// ErrUnauthorized возвращается при несоответствии организации вызывающего
// требуемой роли, а также при попытке чужого изменения записи.
var ErrUnauthorized = errors.New("unauthorized")

// Guard проверяет принадлежность вызывающего к организации роли.
type Guard struct {
	usersOrg     string
	registrarOrg string
}

// NewGuard создаёт проверку ролей для заданных организаций.
func NewGuard(usersOrg, registrarOrg string) *Guard {
	return &Guard{usersOrg: usersOrg, registrarOrg: registrarOrg}
}

// RequireRole возвращает принципала вызывающего, если его организация
// соответствует роли, иначе ErrUnauthorized.
func (g *Guard) RequireRole(led ledger.Ledger, role Role) (string, error) {
	org, principal, err := led.CallerIdentity()
	if err != nil {
		return "", fmt.Errorf("caller identity: %w", err)
	}

	var want string
	switch role {
	case RoleUser:
		want = g.usersOrg
	case RoleRegistrar:
		want = g.registrarOrg
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrUnauthorized, role)
	}

	if org != want {
		return "", fmt.Errorf("%w: role %s requires organization %s, caller is from %s", ErrUnauthorized, role, want, org)
	}
	return principal, nil
}
