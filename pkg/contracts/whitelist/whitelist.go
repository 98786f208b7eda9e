// Package whitelist 是 Whitelist 合约的 Go 绑定
//
// 合约接口：
//
//	constructor(uint8 _maxWhitelistedAddresses)
//	addAddressToWhitelist()                        → 写，发送者加入白名单
//	numAddressesWhitelisted() view returns (uint8) → 已加入人数
//	whitelistedAddresses(address) view returns (bool)
//	maxWhitelistedAddresses() view returns (uint8)
//
// 绑定以 abigen 的结构手写，创建字节码由 Hardhat artifact 提供（见 pkg/contracts/artifact）。
package whitelist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// 方法名
const (
	MethodAddAddressToWhitelist   = "addAddressToWhitelist"
	MethodNumAddressesWhitelisted = "numAddressesWhitelisted"
	MethodWhitelistedAddresses    = "whitelistedAddresses"
	MethodMaxWhitelistedAddresses = "maxWhitelistedAddresses"
)

// DefaultMaxWhitelistedAddresses 部署时的默认容量
const DefaultMaxWhitelistedAddresses = 10

// 合约 require 的失败原因
const (
	RevertAlreadyWhitelisted = "Sender has already been whitelisted"
	RevertLimitReached       = "More addresses cant be added, limit reached"
)

// ABI 合约 ABI 定义
const ABI = `[
  {"inputs":[{"internalType":"uint8","name":"_maxWhitelistedAddresses","type":"uint8"}],"stateMutability":"nonpayable","type":"constructor"},
  {"inputs":[],"name":"addAddressToWhitelist","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"maxWhitelistedAddresses","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"numAddressesWhitelisted","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"","type":"address"}],"name":"whitelistedAddresses","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

var (
	parsedOnce sync.Once
	parsedABI  abi.ABI
	parseErr   error
)

// ParsedABI 返回解析后的 ABI（只解析一次）
func ParsedABI() (abi.ABI, error) {
	parsedOnce.Do(func() {
		parsedABI, parseErr = abi.JSON(strings.NewReader(ABI))
	})
	return parsedABI, parseErr
}

// RequiredMethods 页面和部署脚本依赖的方法
var RequiredMethods = []string{
	MethodAddAddressToWhitelist,
	MethodNumAddressesWhitelisted,
	MethodWhitelistedAddresses,
}

// CheckABI 校验外部提供的 ABI 覆盖了必需的方法
func CheckABI(parsed abi.ABI) error {
	var missing []string
	for _, name := range RequiredMethods {
		if _, ok := parsed.Methods[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("abi missing methods: %s", strings.Join(missing, ", "))
	}
	if len(parsed.Constructor.Inputs) != 1 {
		return errors.New("abi constructor must take exactly one argument")
	}
	return nil
}

// Whitelist 合约绑定
type Whitelist struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewWhitelist 绑定已部署的合约
func NewWhitelist(address common.Address, backend bind.ContractBackend) (*Whitelist, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, fmt.Errorf("parse whitelist abi: %w", err)
	}
	return &Whitelist{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// DeployWhitelist 发布合约，构造参数为最大容量
// 返回的交易尚未确认，调用方需等待 bind.WaitDeployed
func DeployWhitelist(opts *bind.TransactOpts, backend bind.ContractBackend, bytecode []byte, maxWhitelisted uint8) (common.Address, *types.Transaction, *Whitelist, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return common.Address{}, nil, nil, fmt.Errorf("parse whitelist abi: %w", err)
	}
	if len(bytecode) == 0 {
		return common.Address{}, nil, nil, errors.New("empty contract bytecode")
	}
	address, tx, contract, err := bind.DeployContract(opts, parsed, bytecode, backend, maxWhitelisted)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Whitelist{address: address, contract: contract}, nil
}

// Address 合约地址
func (w *Whitelist) Address() common.Address {
	return w.address
}

// NumAddressesWhitelisted 查询已加入白名单的地址数量
func (w *Whitelist) NumAddressesWhitelisted(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	if err := w.contract.Call(opts, &out, MethodNumAddressesWhitelisted); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// MaxWhitelistedAddresses 查询白名单容量
func (w *Whitelist) MaxWhitelistedAddresses(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	if err := w.contract.Call(opts, &out, MethodMaxWhitelistedAddresses); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// WhitelistedAddresses 查询地址是否在白名单中
func (w *Whitelist) WhitelistedAddresses(opts *bind.CallOpts, account common.Address) (bool, error) {
	var out []interface{}
	if err := w.contract.Call(opts, &out, MethodWhitelistedAddresses, account); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// AddAddressToWhitelist 提交"加入白名单"交易，发送者即被加入的地址
func (w *Whitelist) AddAddressToWhitelist(opts *bind.TransactOpts) (*types.Transaction, error) {
	return w.contract.Transact(opts, MethodAddAddressToWhitelist)
}

// PackConstructor 编码构造参数，供需要自行拼接创建数据的调用方使用
func PackConstructor(maxWhitelisted uint8) ([]byte, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("", maxWhitelisted)
}

// ToUint8 把配置里的容量转换为构造参数类型
func ToUint8(n uint64) (uint8, error) {
	if n == 0 || n > 255 {
		return 0, fmt.Errorf("max whitelisted addresses must be in 1..255, got %d", n)
	}
	return uint8(n), nil
}
