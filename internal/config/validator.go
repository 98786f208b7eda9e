package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config [%s]: %s", e.Field, e.Message)
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true}

// Validate 校验配置，返回所有问题
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Network.RPCURL) == "" {
		add("network.rpc_url", "must not be empty")
	}
	if c.Network.ChainID <= 0 {
		add("network.chain_id", "must be positive, got %d", c.Network.ChainID)
	}
	if strings.TrimSpace(c.Network.Name) == "" {
		add("network.name", "must not be empty")
	}

	if c.Contract.Address != "" && !common.IsHexAddress(c.Contract.Address) {
		add("contract.address", "not a hex address: %q", c.Contract.Address)
	}
	if c.Contract.MaxWhitelisted == 0 || c.Contract.MaxWhitelisted > 255 {
		add("contract.max_whitelisted", "must be in 1..255, got %d", c.Contract.MaxWhitelisted)
	}

	if c.Wallet.KeystorePath == "" && c.Wallet.KeystorePassword != "" && c.Wallet.PrivateKey == "" && c.Wallet.Mnemonic == "" {
		add("wallet.keystore_password", "set without wallet.keystore_path")
	}

	if strings.TrimSpace(c.HTTP.ListenAddr) == "" {
		add("http.listen_addr", "must not be empty")
	}
	if c.HTTP.ShutdownTimeout < 0 {
		add("http.shutdown_timeout", "must not be negative")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "unknown level %q", c.Log.Level)
	}

	return errors.Join(errs...)
}
