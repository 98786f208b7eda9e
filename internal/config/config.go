// Package config 白名单 dApp 的配置：默认值 → JSON 文件 → .env → 环境变量
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	logconfig "github.com/mavedefi/whitelist-dapp/internal/config/log"
	"github.com/mavedefi/whitelist-dapp/pkg/contracts/whitelist"
)

// EnvConfigPath 指定 JSON 配置文件的环境变量
const EnvConfigPath = "WHITELIST_CONFIG"

// DefaultEnvFile 默认读取的 dotenv 文件
const DefaultEnvFile = ".env"

// Config 应用配置
type Config struct {
	Network  NetworkConfig        `json:"network"`
	Contract ContractConfig       `json:"contract"`
	Wallet   WalletConfig         `json:"wallet"`
	HTTP     HTTPConfig           `json:"http"`
	Log      logconfig.LogOptions `json:"log"`
}

// NetworkConfig 网络配置
type NetworkConfig struct {
	RPCURL  string `json:"rpc_url" env:"WHITELIST_RPC_URL"`
	ChainID int64  `json:"chain_id" env:"WHITELIST_CHAIN_ID"`
	Name    string `json:"name" env:"WHITELIST_NETWORK_NAME"`
}

// ContractConfig 合约配置
type ContractConfig struct {
	Address        string `json:"address" env:"WHITELIST_CONTRACT_ADDRESS"`
	ArtifactPath   string `json:"artifact_path" env:"WHITELIST_ARTIFACT_PATH"`
	MaxWhitelisted uint64 `json:"max_whitelisted" env:"WHITELIST_MAX_WHITELISTED"`
}

// WalletConfig 签名私钥配置，第一个非空来源生效
type WalletConfig struct {
	PrivateKey         string `json:"private_key" env:"WALLET_PRIVATE_KEY"`
	KeystorePath       string `json:"keystore_path" env:"WALLET_KEYSTORE_PATH"`
	KeystorePassword   string `json:"keystore_password" env:"WALLET_KEYSTORE_PASSWORD"`
	Mnemonic           string `json:"mnemonic" env:"WALLET_MNEMONIC"`
	MnemonicPassphrase string `json:"mnemonic_passphrase" env:"WALLET_MNEMONIC_PASSPHRASE"`
	DerivationPath     string `json:"derivation_path" env:"WALLET_DERIVATION_PATH"`
}

// HTTPConfig 页面服务配置
type HTTPConfig struct {
	ListenAddr      string        `json:"listen_addr" env:"HTTP_LISTEN_ADDR"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// hardhatEnv Hardhat 项目 .env 中常见的变量名，优先级低于本项目的变量
type hardhatEnv struct {
	RPCURL     string `env:"ALCHEMY_API_KEY_URL"`
	PrivateKey string `env:"RINKEBY_PRIVATE_KEY"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			RPCURL:  "http://127.0.0.1:8545",
			ChainID: wallet.DefaultChainID,
			Name:    wallet.DefaultNetworkName,
		},
		Contract: ContractConfig{
			ArtifactPath:   "artifacts/contracts/Whitelist.sol/Whitelist.json",
			MaxWhitelisted: whitelist.DefaultMaxWhitelistedAddresses,
		},
		HTTP: HTTPConfig{
			ListenAddr:      ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: *logconfig.DefaultOptions(),
	}
}

// LoadOptions 加载参数
type LoadOptions struct {
	ConfigPath string   // JSON 配置文件，空时读取 WHITELIST_CONFIG
	EnvFiles   []string // dotenv 文件，不存在的文件被忽略；nil 时使用 .env
}

// Load 按默认顺序加载配置
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath})
}

// LoadWithOptions 加载配置
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{DefaultEnvFile}
	}
	if err := loadDotenv(envFiles); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv 已存在的环境变量不会被覆盖
func loadDotenv(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	//nolint:gosec // G304: 路径来自命令行或环境变量
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshaling config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var hh hardhatEnv
	if err := env.Parse(&hh); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if hh.RPCURL != "" {
		c.Network.RPCURL = hh.RPCURL
	}
	if hh.PrivateKey != "" {
		c.Wallet.PrivateKey = hh.PrivateKey
	}

	// 只覆盖设置了的变量
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// KeySource 钱包私钥来源
func (c *Config) KeySource() wallet.KeySource {
	return wallet.KeySource{
		PrivateKey:         c.Wallet.PrivateKey,
		KeystorePath:       c.Wallet.KeystorePath,
		KeystorePassword:   c.Wallet.KeystorePassword,
		Mnemonic:           c.Wallet.Mnemonic,
		MnemonicPassphrase: c.Wallet.MnemonicPassphrase,
		DerivationPath:     c.Wallet.DerivationPath,
	}
}

// ContractAddress 合约地址，未配置时为零地址
func (c *Config) ContractAddress() common.Address {
	if c.Contract.Address == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Contract.Address)
}

// RequireContract 需要合约地址的命令调用
func (c *Config) RequireContract() error {
	if strings.TrimSpace(c.Contract.Address) == "" {
		return &ValidationError{Field: "contract.address", Message: "not configured (set WHITELIST_CONTRACT_ADDRESS)"}
	}
	return nil
}

// MaxWhitelisted 构造参数
func (c *Config) MaxWhitelisted() (uint8, error) {
	return whitelist.ToUint8(c.Contract.MaxWhitelisted)
}

// ConnectorOptions 钱包连接器参数（不含私钥）
func (c *Config) ConnectorOptions() wallet.Options {
	return wallet.Options{
		ChainID:     c.Network.ChainID,
		NetworkName: c.Network.Name,
	}
}
