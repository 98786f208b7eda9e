// Package fakechain 内存版以太坊后端，按 Whitelist 合约规则执行调用与交易，供单元测试使用
//
// 满足 bind.ContractBackend、bind.DeployBackend 以及 ChainID 查询，
// 与 ethclient.Client 可互换。
package fakechain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"

	"github.com/mavedefi/whitelist-dapp/pkg/contracts/whitelist"
)

// 费用参数
var (
	BaseFee   = big.NewInt(1_000_000_000)
	TipCap    = big.NewInt(1_000_000_000)
	GasPrice  = big.NewInt(2_000_000_000)
	GasPerTx  = uint64(60_000)
	BlockGas  = uint64(30_000_000)
	codeStub  = []byte{0x60, 0x80, 0x60, 0x40, 0x52}
	errClosed = errors.New("fakechain: backend closed")
)

// ErrInjected 注入的发送失败
var ErrInjected = errors.New("fakechain: injected failure")

type whitelistState struct {
	max     uint8
	members map[common.Address]bool
}

type pendingTx struct {
	tx     *types.Transaction
	from   common.Address
	revert bool
}

// Backend 内存链
type Backend struct {
	mu sync.Mutex

	chainID *big.Int
	signer  types.Signer
	abi     abi.ABI

	block     uint64
	autoMine  bool
	closed    bool
	nonces    map[common.Address]uint64
	code      map[common.Address][]byte
	contracts map[common.Address]*whitelistState
	pending   []pendingTx
	receipts  map[common.Hash]*types.Receipt

	sendErr   error
	revertTx  bool
	callErr   error
	chainErr  error
	sendCount int
}

// New 创建指定链 ID 的内存链，默认每笔交易立即出块
func New(chainID int64) *Backend {
	parsed, err := whitelist.ParsedABI()
	if err != nil {
		panic(fmt.Sprintf("fakechain: parse whitelist abi: %v", err))
	}
	id := big.NewInt(chainID)
	return &Backend{
		chainID:   id,
		signer:    types.LatestSignerForChainID(id),
		abi:       parsed,
		block:     1,
		autoMine:  true,
		nonces:    make(map[common.Address]uint64),
		code:      make(map[common.Address][]byte),
		contracts: make(map[common.Address]*whitelistState),
		receipts:  make(map[common.Hash]*types.Receipt),
	}
}

// ========== 测试控制 ==========

// SetAutoMine 关闭后交易停留在待打包队列，需显式调用 Commit
func (b *Backend) SetAutoMine(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoMine = on
}

// SetChainID 模拟用户在钱包中切换网络
func (b *Backend) SetChainID(chainID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chainID = big.NewInt(chainID)
	b.signer = types.LatestSignerForChainID(b.chainID)
}

// FailNextSend 下一次 SendTransaction 返回 err（nil 时使用 ErrInjected）
func (b *Backend) FailNextSend(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	b.sendErr = err
}

// RevertNext 下一笔交易被打包但执行失败（receipt.Status = 0）
func (b *Backend) RevertNext() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revertTx = true
}

// FailCalls 让所有只读调用返回 err，传 nil 恢复
func (b *Backend) FailCalls(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callErr = err
}

// FailChainID 让 ChainID 查询返回 err，传 nil 恢复
func (b *Backend) FailChainID(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chainErr = err
}

// Close 关闭后所有请求返回错误
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// SentCount 已接受的交易数
func (b *Backend) SentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sendCount
}

// PendingCount 待打包交易数
func (b *Backend) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// SeedWhitelist 不经交易直接放置一个 Whitelist 合约，返回地址
func (b *Backend) SeedWhitelist(maxWhitelisted uint8, members ...common.Address) common.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	addr := crypto.CreateAddress(common.Address{}, uint64(len(b.contracts)))
	state := &whitelistState{max: maxWhitelisted, members: make(map[common.Address]bool)}
	for _, m := range members {
		state.members[m] = true
	}
	b.contracts[addr] = state
	b.code[addr] = codeStub
	return addr
}

// Members 合约当前的白名单成员数
func (b *Backend) Members(contract common.Address) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.contracts[contract]; ok {
		return len(st.members)
	}
	return 0
}

// Commit 打包所有待处理交易为一个区块
func (b *Backend) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commitLocked()
}

// ========== 链接口 ==========

// ChainID 当前网络 ID
func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return nil, err
	}
	if b.chainErr != nil {
		return nil, b.chainErr
	}
	return new(big.Int).Set(b.chainID), nil
}

// HeaderByNumber 返回最新区块头（带 BaseFee，触发 EIP-1559 交易）
func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return nil, err
	}
	return &types.Header{
		Number:   new(big.Int).SetUint64(b.block),
		GasLimit: BlockGas,
		BaseFee:  new(big.Int).Set(BaseFee),
	}, nil
}

// CodeAt 合约代码
func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return nil, err
	}
	return b.code[contract], nil
}

// PendingCodeAt 同 CodeAt
func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return b.CodeAt(ctx, account, nil)
}

// CallContract 执行只读调用
func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return nil, err
	}
	if b.callErr != nil {
		return nil, b.callErr
	}
	if call.To == nil {
		return nil, errors.New("fakechain: call without target")
	}
	st, ok := b.contracts[*call.To]
	if !ok {
		// 与真实节点一致：目标无代码时返回空结果
		return nil, nil
	}
	return b.callLocked(st, call.From, call.Data)
}

// PendingCallContract 同 CallContract
func (b *Backend) PendingCallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	return b.CallContract(ctx, call, nil)
}

// PendingNonceAt 账户下一个 nonce（含待打包交易）
func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return 0, err
	}
	return b.nonces[account], nil
}

// SuggestGasPrice 固定 gas 价格
func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(GasPrice), nil
}

// SuggestGasTipCap 固定小费
func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(TipCap), nil
}

// EstimateGas 预执行交易，会 revert 的交易返回 "execution reverted: <reason>"
func (b *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return 0, err
	}
	if call.To == nil {
		return GasPerTx * 10, nil
	}
	st, ok := b.contracts[*call.To]
	if !ok {
		return GasPerTx, nil
	}
	if err := b.dryRunLocked(st, call.From, call.Data); err != nil {
		return 0, err
	}
	return GasPerTx, nil
}

// SendTransaction 接受已签名交易
func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return err
	}
	if b.sendErr != nil {
		err := b.sendErr
		b.sendErr = nil
		return err
	}
	from, err := types.Sender(b.signer, tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.Nonce() != b.nonces[from] {
		return fmt.Errorf("nonce mismatch: have %d, want %d", tx.Nonce(), b.nonces[from])
	}
	b.nonces[from]++
	b.sendCount++
	b.pending = append(b.pending, pendingTx{tx: tx, from: from, revert: b.revertTx})
	b.revertTx = false
	if b.autoMine {
		b.commitLocked()
	}
	return nil
}

// TransactionReceipt 已打包交易的回执，未打包时返回 ethereum.NotFound
func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(ctx); err != nil {
		return nil, err
	}
	r, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// FilterLogs 合约不产生事件
func (b *Backend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

// SubscribeFilterLogs 返回一个不会产生日志的订阅
func (b *Backend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	}), nil
}

// ========== 执行 ==========

func (b *Backend) checkLocked(ctx context.Context) error {
	if b.closed {
		return errClosed
	}
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

func (b *Backend) callLocked(st *whitelistState, from common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("execution reverted")
	}
	method, err := b.abi.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}
	switch method.Name {
	case whitelist.MethodNumAddressesWhitelisted:
		return method.Outputs.Pack(uint8(len(st.members)))
	case whitelist.MethodMaxWhitelistedAddresses:
		return method.Outputs.Pack(st.max)
	case whitelist.MethodWhitelistedAddresses:
		args, err := method.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, fmt.Errorf("execution reverted: %w", err)
		}
		account, ok := args[0].(common.Address)
		if !ok {
			return nil, errors.New("execution reverted: bad address argument")
		}
		return method.Outputs.Pack(st.members[account])
	case whitelist.MethodAddAddressToWhitelist:
		if err := b.dryRunLocked(st, from, data); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, fmt.Errorf("execution reverted: unknown method %s", method.Name)
}

// dryRunLocked 检查写交易能否成功
func (b *Backend) dryRunLocked(st *whitelistState, from common.Address, data []byte) error {
	if len(data) < 4 {
		return errors.New("execution reverted")
	}
	method, err := b.abi.MethodById(data[:4])
	if err != nil {
		return fmt.Errorf("execution reverted: %w", err)
	}
	if method.Name != whitelist.MethodAddAddressToWhitelist {
		return nil
	}
	if st.members[from] {
		return errors.New("execution reverted: " + whitelist.RevertAlreadyWhitelisted)
	}
	if len(st.members) >= int(st.max) {
		return errors.New("execution reverted: " + whitelist.RevertLimitReached)
	}
	return nil
}

func (b *Backend) commitLocked() {
	if len(b.pending) == 0 {
		return
	}
	b.block++
	number := new(big.Int).SetUint64(b.block)
	for i, p := range b.pending {
		receipt := &types.Receipt{
			Type:              p.tx.Type(),
			Status:            types.ReceiptStatusSuccessful,
			CumulativeGasUsed: GasPerTx * uint64(i+1),
			GasUsed:           GasPerTx,
			TxHash:            p.tx.Hash(),
			BlockNumber:       number,
			TransactionIndex:  uint(i),
		}
		if p.revert || !b.applyLocked(p, receipt) {
			receipt.Status = types.ReceiptStatusFailed
		}
		b.receipts[p.tx.Hash()] = receipt
	}
	b.pending = nil
}

func (b *Backend) applyLocked(p pendingTx, receipt *types.Receipt) bool {
	if p.tx.To() == nil {
		// 创建数据 = 字节码 + abi 编码的 uint8 构造参数
		data := p.tx.Data()
		if len(data) <= 32 {
			return false
		}
		maxWhitelisted := data[len(data)-1]
		addr := crypto.CreateAddress(p.from, p.tx.Nonce())
		b.contracts[addr] = &whitelistState{max: maxWhitelisted, members: make(map[common.Address]bool)}
		b.code[addr] = data[:len(data)-32]
		receipt.ContractAddress = addr
		return true
	}
	st, ok := b.contracts[*p.tx.To()]
	if !ok {
		return true
	}
	if err := b.dryRunLocked(st, p.from, p.tx.Data()); err != nil {
		return false
	}
	method, err := b.abi.MethodById(p.tx.Data()[:4])
	if err == nil && method.Name == whitelist.MethodAddAddressToWhitelist {
		st.members[p.from] = true
	}
	return true
}
