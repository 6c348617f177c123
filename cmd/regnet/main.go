// Package main запускает чейнкод сети регистрации собственности.
package main

import (
	"github.com/hyperledger/fabric-chaincode-go/v2/shim"
	"github.com/hyperledger/fabric-contract-api-go/v2/contractapi"
	"go.uber.org/zap"

	"github.com/mmeshcher/regnet-system/internal/auth"
	"github.com/mmeshcher/regnet-system/internal/config"
	"github.com/mmeshcher/regnet-system/internal/handler"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	guard := auth.NewGuard(cfg.UsersMSP, cfg.RegistrarMSP)

	cc, err := contractapi.NewChaincode(
		handler.NewUsersContract(logger, guard),
		handler.NewRegistrarContract(logger, guard),
	)
	if err != nil {
		sugar.Fatalw("chaincode initialization error", "error", err.Error())
	}

	// Режим chaincode-as-a-service: пир подключается к нам сам.
	if cfg.ChaincodeAddress != "" {
		server := &shim.ChaincodeServer{
			CCID:     cfg.ChaincodeID,
			Address:  cfg.ChaincodeAddress,
			CC:       cc,
			TLSProps: shim.TLSProperties{Disabled: true},
		}
		sugar.Infow("starting chaincode server", "addr", cfg.ChaincodeAddress, "ccid", cfg.ChaincodeID)
		if err := server.Start(); err != nil {
			sugar.Fatalw("chaincode server terminated with error", "error", err.Error())
		}
		return
	}

	if err := cc.Start(); err != nil {
		sugar.Fatalw("chaincode terminated with error", "error", err.Error())
	}
}
