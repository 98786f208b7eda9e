package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// MnemonicStrength 助记词强度
type MnemonicStrength int

const (
	// Mnemonic12Words 12个助记词 (128 bits 熵)
	Mnemonic12Words MnemonicStrength = 128
	// Mnemonic24Words 24个助记词 (256 bits 熵)
	Mnemonic24Words MnemonicStrength = 256
)

// ErrInvalidMnemonic 助记词校验失败
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// GenerateMnemonic 生成助记词
// strength: 熵的位数，支持 128(12词), 160, 192, 224, 256(24词)
func GenerateMnemonic(strength MnemonicStrength) (string, error) {
	switch strength {
	case 128, 160, 192, 224, 256:
	default:
		return "", fmt.Errorf("invalid mnemonic strength: %d, must be 128, 160, 192, 224, or 256", strength)
	}

	entropy := make([]byte, int(strength)/8)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic 验证助记词是否有效
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(normalizeSpaces(mnemonic))
}

// DeriveKeyFromMnemonic 按 BIP39 种子 + BIP44 路径派生私钥
// path 为空时使用 m/44'/60'/0'/0/0
func DeriveKeyFromMnemonic(mnemonic, passphrase, path string) (*ecdsa.PrivateKey, error) {
	mnemonic = normalizeSpaces(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	dp, err := ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}

	// PBKDF2 with HMAC-SHA512
	seed := bip39.NewSeed(mnemonic, passphrase)

	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}

	childKey := masterKey
	for _, index := range dp.ToUint32Array() {
		childKey, err = childKey.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("derive key: %w", err)
		}
	}

	privKey, err := childKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	// 转成 go-ethereum 的 secp256k1 曲线表示，签名时才能使用
	key, err := crypto.ToECDSA(privKey.Serialize())
	if err != nil {
		return nil, fmt.Errorf("convert private key: %w", err)
	}
	return key, nil
}

// normalizeSpaces 规范化空格（将多个连续空格替换为单个空格）
func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
