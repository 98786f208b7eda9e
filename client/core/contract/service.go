// Package contract 封装 Whitelist 合约的读、写、部署业务流程
package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
	"github.com/mavedefi/whitelist-dapp/pkg/contracts/whitelist"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

// 指标中使用的操作名
const (
	OpDeploy         = "deploy"
	OpWaitMined      = "waitMined"
	OpNumWhitelisted = whitelist.MethodNumAddressesWhitelisted
	OpIsWhitelisted  = whitelist.MethodWhitelistedAddresses
	OpMaxWhitelisted = whitelist.MethodMaxWhitelistedAddresses
	OpJoin           = whitelist.MethodAddAddressToWhitelist
)

var (
	// ErrTransactionFailed 交易已打包但执行失败
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNoContractAddress 未配置合约地址
	ErrNoContractAddress = errors.New("whitelist contract address not configured")
)

// WhitelistService 合约业务服务
type WhitelistService struct {
	connector *wallet.Connector
	address   common.Address
	metrics   *metrics.Collector
	logger    logiface.Logger
}

// NewWhitelistService 创建合约业务服务
// address 为零地址时只能部署
func NewWhitelistService(
	connector *wallet.Connector,
	address common.Address,
	collector *metrics.Collector,
	logger logiface.Logger,
) *WhitelistService {
	return &WhitelistService{
		connector: connector,
		address:   address,
		metrics:   collector,
		logger:    log.NewModuleLogger(logger, "contract"),
	}
}

// Address 合约地址
func (s *WhitelistService) Address() common.Address {
	return s.address
}

// ========== 只读调用 ==========

// NumberOfWhitelisted 已加入白名单的地址数量
func (s *WhitelistService) NumberOfWhitelisted(ctx context.Context) (n uint64, err error) {
	defer func() { s.metrics.ObserveContractCall(OpNumWhitelisted, err) }()

	provider, err := s.connector.Provider(ctx)
	if err != nil {
		return 0, err
	}
	wl, err := s.bind(provider)
	if err != nil {
		return 0, err
	}
	v, err := wl.NumAddressesWhitelisted(provider.CallOpts(ctx))
	if err != nil {
		return 0, fmt.Errorf("call %s: %w", OpNumWhitelisted, err)
	}
	return uint64(v), nil
}

// MaxWhitelisted 白名单容量
func (s *WhitelistService) MaxWhitelisted(ctx context.Context) (n uint64, err error) {
	defer func() { s.metrics.ObserveContractCall(OpMaxWhitelisted, err) }()

	provider, err := s.connector.Provider(ctx)
	if err != nil {
		return 0, err
	}
	wl, err := s.bind(provider)
	if err != nil {
		return 0, err
	}
	v, err := wl.MaxWhitelistedAddresses(provider.CallOpts(ctx))
	if err != nil {
		return 0, fmt.Errorf("call %s: %w", OpMaxWhitelisted, err)
	}
	return uint64(v), nil
}

// IsWhitelisted 当前签名账户是否已在白名单中
// 需要签名句柄来确定"当前账户"
func (s *WhitelistService) IsWhitelisted(ctx context.Context) (account common.Address, member bool, err error) {
	defer func() { s.metrics.ObserveContractCall(OpIsWhitelisted, err) }()

	signer, err := s.connector.Signer(ctx)
	if err != nil {
		return common.Address{}, false, err
	}
	wl, err := s.bind(signer.Provider)
	if err != nil {
		return common.Address{}, false, err
	}
	member, err = wl.WhitelistedAddresses(signer.CallOpts(ctx), signer.Address())
	if err != nil {
		return signer.Address(), false, fmt.Errorf("call %s: %w", OpIsWhitelisted, err)
	}
	return signer.Address(), member, nil
}

// ========== 交易 ==========

// SubmitJoin 提交加入白名单交易，不等待确认
func (s *WhitelistService) SubmitJoin(ctx context.Context) (tx *types.Transaction, err error) {
	defer func() { s.metrics.ObserveContractCall(OpJoin, err) }()

	signer, err := s.connector.Signer(ctx)
	if err != nil {
		return nil, err
	}
	wl, err := s.bind(signer.Provider)
	if err != nil {
		return nil, err
	}
	opts, err := signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err = wl.AddAddressToWhitelist(opts)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", OpJoin, err)
	}
	s.logger.Infof("加入白名单交易已提交: tx=%s from=%s", tx.Hash().Hex(), signer.Address().Hex())
	return tx, nil
}

// WaitMined 等待交易打包；打包但执行失败返回 ErrTransactionFailed
func (s *WhitelistService) WaitMined(ctx context.Context, tx *types.Transaction) (receipt *types.Receipt, err error) {
	defer func() { s.metrics.ObserveContractCall(OpWaitMined, err) }()

	provider, err := s.connector.Provider(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	receipt, err = bind.WaitMined(ctx, provider.Backend(), tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	s.metrics.ObserveConfirmation(time.Since(start))
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("tx %s in block %s: %w", tx.Hash().Hex(), receipt.BlockNumber, ErrTransactionFailed)
	}
	return receipt, nil
}

// ========== 部署 ==========

// DeployRequest 合约部署请求
type DeployRequest struct {
	Bytecode       []byte // 创建字节码（来自编译产物）
	MaxWhitelisted uint8  // 构造参数：白名单容量
}

// DeployResult 合约部署结果
type DeployResult struct {
	ContractAddress common.Address
	TxHash          common.Hash
	Deployer        common.Address
	BlockNumber     uint64
}

// Deploy 发布合约并等待代码上链
func (s *WhitelistService) Deploy(ctx context.Context, req DeployRequest) (res *DeployResult, err error) {
	defer func() { s.metrics.ObserveContractCall(OpDeploy, err) }()

	if req.MaxWhitelisted == 0 {
		return nil, errors.New("max whitelisted addresses must be positive")
	}
	signer, err := s.connector.Signer(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}

	address, tx, _, err := whitelist.DeployWhitelist(opts, signer.Backend(), req.Bytecode, req.MaxWhitelisted)
	if err != nil {
		return nil, fmt.Errorf("deploy whitelist: %w", err)
	}
	s.logger.Infof("部署交易已提交: tx=%s address=%s", tx.Hash().Hex(), address.Hex())

	start := time.Now()
	deployed, err := bind.WaitDeployed(ctx, signer.Backend(), tx)
	if err != nil {
		return nil, fmt.Errorf("wait deployed: %w", err)
	}
	s.metrics.ObserveConfirmation(time.Since(start))

	receipt, err := signer.Backend().TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, fmt.Errorf("fetch deploy receipt: %w", err)
	}

	s.address = deployed
	return &DeployResult{
		ContractAddress: deployed,
		TxHash:          tx.Hash(),
		Deployer:        signer.Address(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
	}, nil
}

func (s *WhitelistService) bind(p *wallet.Provider) (*whitelist.Whitelist, error) {
	if s.address == (common.Address{}) {
		return nil, ErrNoContractAddress
	}
	return whitelist.NewWhitelist(s.address, p.Backend())
}
