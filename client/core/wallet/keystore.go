package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeySource 签名私钥来源，按字段顺序第一个配置项生效
type KeySource struct {
	PrivateKey         string // 十六进制私钥（可带 0x）
	KeystorePath       string // V3 keystore 文件
	KeystorePassword   string
	Mnemonic           string // BIP39 助记词
	MnemonicPassphrase string
	DerivationPath     string // 默认 m/44'/60'/0'/0/0
}

// SourceType 私钥来源类型
type SourceType string

const (
	SourceNone       SourceType = "none"
	SourcePrivateKey SourceType = "private_key"
	SourceKeystore   SourceType = "keystore"
	SourceMnemonic   SourceType = "mnemonic"
)

// Type 返回生效的来源
func (s KeySource) Type() SourceType {
	switch {
	case strings.TrimSpace(s.PrivateKey) != "":
		return SourcePrivateKey
	case s.KeystorePath != "":
		return SourceKeystore
	case strings.TrimSpace(s.Mnemonic) != "":
		return SourceMnemonic
	}
	return SourceNone
}

// NeedsPassword keystore 来源且未配置密码
func (s KeySource) NeedsPassword() bool {
	return s.Type() == SourceKeystore && s.KeystorePassword == ""
}

// LoadKey 加载私钥；没有配置任何来源时返回 (nil, nil)
func (s KeySource) LoadKey() (*ecdsa.PrivateKey, error) {
	switch s.Type() {
	case SourcePrivateKey:
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s.PrivateKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return key, nil
	case SourceKeystore:
		return decryptKeystore(s.KeystorePath, s.KeystorePassword)
	case SourceMnemonic:
		return DeriveKeyFromMnemonic(s.Mnemonic, s.MnemonicPassphrase, s.DerivationPath)
	}
	return nil, nil
}

func decryptKeystore(path, password string) (*ecdsa.PrivateKey, error) {
	//nolint:gosec // G304: 路径来自运维配置
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, fmt.Errorf("keystore %s: wrong password: %w", path, err)
		}
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}
