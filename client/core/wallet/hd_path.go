package wallet

import (
	"fmt"
	"strconv"
	"strings"
)

// BIP44 相关常量
const (
	// EthereumCoinType 以太坊的 SLIP-0044 Coin Type
	EthereumCoinType uint32 = 60

	// BIP44Purpose BIP44 标准的 purpose 值
	BIP44Purpose uint32 = 44

	// HardenedOffset 硬化派生偏移量
	HardenedOffset uint32 = 0x80000000

	// DefaultAccount 默认账户索引
	DefaultAccount uint32 = 0

	// ExternalChain 外部链（用于接收地址）
	ExternalChain uint32 = 0

	// InternalChain 内部链
	InternalChain uint32 = 1

	// DefaultAddressIndex 默认地址索引
	DefaultAddressIndex uint32 = 0
)

// DerivationPath BIP44 派生路径
type DerivationPath struct {
	Purpose      uint32 `json:"purpose"`
	CoinType     uint32 `json:"coin_type"`
	Account      uint32 `json:"account"`
	Change       uint32 `json:"change"`
	AddressIndex uint32 `json:"address_index"`
}

// DefaultDerivationPath 返回以太坊默认派生路径 m/44'/60'/0'/0/0
// 与 MetaMask 等浏览器钱包的第一个账户一致
func DefaultDerivationPath() *DerivationPath {
	return NewDerivationPath(DefaultAccount, ExternalChain, DefaultAddressIndex)
}

// NewDerivationPath 创建新的派生路径
func NewDerivationPath(account, change, addressIndex uint32) *DerivationPath {
	return &DerivationPath{
		Purpose:      BIP44Purpose,
		CoinType:     EthereumCoinType,
		Account:      account,
		Change:       change,
		AddressIndex: addressIndex,
	}
}

// ParseDerivationPath 解析派生路径字符串
// 支持格式: m/44'/60'/0'/0/0 或 44'/60'/0'/0/0，空字符串返回默认路径
func ParseDerivationPath(path string) (*DerivationPath, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultDerivationPath(), nil
	}
	path = strings.TrimPrefix(path, "m/")
	path = strings.TrimPrefix(path, "M/")

	parts := strings.Split(path, "/")
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid derivation path: expected 5 components, got %d", len(parts))
	}

	dp := &DerivationPath{}
	var err error

	dp.Purpose, err = parsePathComponent(parts[0], true)
	if err != nil {
		return nil, fmt.Errorf("invalid purpose: %w", err)
	}
	if dp.Purpose != BIP44Purpose {
		return nil, fmt.Errorf("invalid purpose: expected %d (BIP44), got %d", BIP44Purpose, dp.Purpose)
	}

	dp.CoinType, err = parsePathComponent(parts[1], true)
	if err != nil {
		return nil, fmt.Errorf("invalid coin type: %w", err)
	}

	dp.Account, err = parsePathComponent(parts[2], true)
	if err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}

	dp.Change, err = parsePathComponent(parts[3], false)
	if err != nil {
		return nil, fmt.Errorf("invalid change: %w", err)
	}
	if dp.Change > 1 {
		return nil, fmt.Errorf("invalid change: expected 0 or 1, got %d", dp.Change)
	}

	dp.AddressIndex, err = parsePathComponent(parts[4], false)
	if err != nil {
		return nil, fmt.Errorf("invalid address index: %w", err)
	}

	return dp, nil
}

// parsePathComponent 解析路径组件
// requireHardened: 是否要求硬化派生
func parsePathComponent(component string, requireHardened bool) (uint32, error) {
	isHardened := strings.HasSuffix(component, "'") || strings.HasSuffix(component, "H") || strings.HasSuffix(component, "h")

	if requireHardened && !isHardened {
		return 0, fmt.Errorf("hardened derivation required for %s", component)
	}

	component = strings.TrimSuffix(component, "'")
	component = strings.TrimSuffix(component, "H")
	component = strings.TrimSuffix(component, "h")

	value, err := strconv.ParseUint(component, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", component)
	}

	return uint32(value), nil
}

// String 返回路径字符串表示
func (dp *DerivationPath) String() string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d",
		dp.Purpose,
		dp.CoinType,
		dp.Account,
		dp.Change,
		dp.AddressIndex,
	)
}

// ToUint32Array 转换为 hdkeychain 使用的索引序列（含硬化标记）
func (dp *DerivationPath) ToUint32Array() []uint32 {
	return []uint32{
		dp.Purpose + HardenedOffset,
		dp.CoinType + HardenedOffset,
		dp.Account + HardenedOffset,
		dp.Change,
		dp.AddressIndex,
	}
}

// WithAddressIndex 返回使用指定地址索引的新路径
func (dp *DerivationPath) WithAddressIndex(index uint32) *DerivationPath {
	newPath := *dp
	newPath.AddressIndex = index
	return &newPath
}
