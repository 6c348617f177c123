// Package config содержит логику чтения конфигурации чейнкода regnet.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры запуска чейнкода и организации ролей.
type Config struct {
	// ChaincodeAddress включает режим chaincode-as-a-service;
	// пустое значение — классический запуск через пир.
	ChaincodeAddress string `env:"CHAINCODE_SERVER_ADDRESS"`
	ChaincodeID      string `env:"CHAINCODE_ID"`
	UsersMSP         string `env:"USERS_MSP_ID"`
	RegistrarMSP     string `env:"REGISTRAR_MSP_ID"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envChaincodeAddress := cfg.ChaincodeAddress
	envChaincodeID := cfg.ChaincodeID
	envUsersMSP := cfg.UsersMSP
	envRegistrarMSP := cfg.RegistrarMSP

	flag.StringVar(&cfg.ChaincodeAddress, "a", "", "chaincode server address for chaincode-as-a-service mode")
	flag.StringVar(&cfg.ChaincodeID, "i", "", "chaincode package ID")
	flag.StringVar(&cfg.UsersMSP, "u", "usersMSP", "MSP ID of the users organization")
	flag.StringVar(&cfg.RegistrarMSP, "r", "registrarMSP", "MSP ID of the registrar organization")

	flag.Parse()

	if envChaincodeAddress != "" {
		cfg.ChaincodeAddress = envChaincodeAddress
	}
	if envChaincodeID != "" {
		cfg.ChaincodeID = envChaincodeID
	}
	if envUsersMSP != "" {
		cfg.UsersMSP = envUsersMSP
	}
	if envRegistrarMSP != "" {
		cfg.RegistrarMSP = envRegistrarMSP
	}

	if cfg.UsersMSP == "" {
		cfg.UsersMSP = "usersMSP"
	}
	if cfg.RegistrarMSP == "" {
		cfg.RegistrarMSP = "registrarMSP"
	}

	return cfg, nil
}
