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

// RegistrarContract публикует транзакции роли регистратора.
type RegistrarContract struct {
	contractapi.Contract
	logger *zap.Logger
	guard  *auth.Guard
}

// NewRegistrarContract создаёт контракт регистратора с его полным именем в сети.
func NewRegistrarContract(logger *zap.Logger, guard *auth.Guard) *RegistrarContract {
	c := &RegistrarContract{logger: logger, guard: guard}
	c.Name = "org.property-registration-network.regnet.registrar"
	return c
}

// Instantiate вызывается при установке чейнкода.
func (c *RegistrarContract) Instantiate(_ contractapi.TransactionContextInterface) error {
	c.logger.Info("registrar contract instantiated")
	return nil
}

// ApproveIdentity одобряет заявку на регистрацию участника.
func (c *RegistrarContract) ApproveIdentity(ctx contractapi.TransactionContextInterface, name, idNumber string) (*model.Identity, error) {
	svc, err := c.registrar(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := svc.ApproveIdentity(name, idNumber)
	if err != nil {
		c.logger.Error("approve identity", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return identity, nil
}

// ApproveProperty одобряет заявку на регистрацию объекта собственности.
func (c *RegistrarContract) ApproveProperty(ctx contractapi.TransactionContextInterface, propertyID string) (*model.Property, error) {
	svc, err := c.registrar(ctx)
	if err != nil {
		return nil, err
	}
	property, err := svc.ApproveProperty(propertyID)
	if err != nil {
		c.logger.Error("approve property", zap.String("propertyID", propertyID), zap.Error(err))
		return nil, err
	}
	return property, nil
}

// ViewIdentity возвращает одобренного участника.
func (c *RegistrarContract) ViewIdentity(ctx contractapi.TransactionContextInterface, name, idNumber string) (*model.Identity, error) {
	svc, err := c.registrar(ctx)
	if err != nil {
		return nil, err
	}
	return svc.ViewIdentity(name, idNumber)
}

// ViewProperty возвращает одобренный объект собственности.
func (c *RegistrarContract) ViewProperty(ctx contractapi.TransactionContextInterface, propertyID string) (*model.Property, error) {
	svc, err := c.registrar(ctx)
	if err != nil {
		return nil, err
	}
	return svc.ViewProperty(propertyID)
}

// registrar строит сервис регистратора над контекстом текущей транзакции.
func (c *RegistrarContract) registrar(ctx contractapi.TransactionContextInterface) (*service.Registrar, error) {
	led := ledger.NewFabric(ctx.GetStub(), ctx.GetClientIdentity())
	now, err := led.TxTimestamp()
	if err != nil {
		return nil, fmt.Errorf("transaction timestamp: %w", err)
	}
	return service.NewRegistrar(led, c.guard, now), nil
}
