// Package handler привязывает транзакции чейнкода к бизнес-логике сети
// regnet. Каждый вызов строит порт реестра и сервис над контекстом своей
// транзакции.
package handler

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/v2/contractapi"
	"go.uber.org/zap"

	"github.com/mmeshcher/regnet-system/internal/auth"
	"github.com/mmeshcher/regnet-system/internal/ledger"
	"github.com/mmeshcher/regnet-system/internal/model"
	"github.com/mmeshcher/regnet-system/internal/service"
)

// UsersContract публикует транзакции роли участника.
type UsersContract struct {
	contractapi.Contract
	logger *zap.Logger
	guard  *auth.Guard
}

// NewUsersContract создаёт контракт участника с его полным именем в сети.
func NewUsersContract(logger *zap.Logger, guard *auth.Guard) *UsersContract {
	c := &UsersContract{logger: logger, guard: guard}
	c.Name = "org.property-registration-network.regnet.user"
	return c
}

// Instantiate вызывается при установке чейнкода.
func (c *UsersContract) Instantiate(_ contractapi.TransactionContextInterface) error {
	c.logger.Info("users contract instantiated")
	return nil
}

// RequestNewIdentity подаёт заявку на регистрацию участника.
func (c *UsersContract) RequestNewIdentity(ctx contractapi.TransactionContextInterface, name, email, phone, idNumber string) (*model.PendingRequest, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	request, err := svc.RequestNewIdentity(name, email, phone, idNumber)
	if err != nil {
		c.logger.Error("request new identity", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return request, nil
}

// RechargeBalance пополняет баланс участника банковским токеном.
func (c *UsersContract) RechargeBalance(ctx contractapi.TransactionContextInterface, name, token, idNumber string) (*model.Identity, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := svc.RechargeBalance(name, token, idNumber)
	if err != nil {
		c.logger.Error("recharge balance", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return identity, nil
}

// ViewIdentity возвращает одобренного участника.
func (c *UsersContract) ViewIdentity(ctx contractapi.TransactionContextInterface, name, idNumber string) (*model.Identity, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	return svc.ViewIdentity(name, idNumber)
}

// RequestProperty подаёт заявку на регистрацию объекта собственности.
func (c *UsersContract) RequestProperty(ctx contractapi.TransactionContextInterface, name, idNumber, propertyID string, price int64, status string) (*model.PendingRequest, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	request, err := svc.RequestProperty(name, idNumber, propertyID, price, status)
	if err != nil {
		c.logger.Error("request property", zap.String("propertyID", propertyID), zap.Error(err))
		return nil, err
	}
	return request, nil
}

// ViewProperty возвращает одобренный объект собственности.
func (c *UsersContract) ViewProperty(ctx contractapi.TransactionContextInterface, propertyID string) (*model.Property, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	return svc.ViewProperty(propertyID)
}

// UpdatePropertyStatus меняет статус объекта собственности владельцем.
func (c *UsersContract) UpdatePropertyStatus(ctx contractapi.TransactionContextInterface, name, idNumber, propertyID, status string) (*model.Property, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	property, err := svc.UpdatePropertyStatus(name, idNumber, propertyID, status)
	if err != nil {
		c.logger.Error("update property status", zap.String("propertyID", propertyID), zap.Error(err))
		return nil, err
	}
	return property, nil
}

// PurchaseProperty покупает выставленный на продажу объект.
func (c *UsersContract) PurchaseProperty(ctx contractapi.TransactionContextInterface, propertyID, name, idNumber string) (*model.Property, error) {
	svc, err := c.users(ctx)
	if err != nil {
		return nil, err
	}
	property, err := svc.PurchaseProperty(propertyID, name, idNumber)
	if err != nil {
		c.logger.Error("purchase property", zap.String("propertyID", propertyID), zap.Error(err))
		return nil, err
	}
	return property, nil
}

// users строит сервис участника над контекстом текущей транзакции.
func (c *UsersContract) users(ctx contractapi.TransactionContextInterface) (*service.Users, error) {
	led := ledger.NewFabric(ctx.GetStub(), ctx.GetClientIdentity())
	now, err := led.TxTimestamp()
	if err != nil {
		return nil, fmt.Errorf("transaction timestamp: %w", err)
	}
	return service.NewUsers(led, c.guard, now), nil
}
