// Package wallet 管理与以太坊节点的钱包会话：网络校验、只读句柄与签名句柄
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend 钱包会话底层的链访问能力，*ethclient.Client 满足此接口
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Handle 钱包会话句柄：只读 Provider 或可签名 Signer
type Handle interface {
	Backend() Backend
	ChainID() *big.Int
}

// Provider 只读句柄
type Provider struct {
	backend Backend
	chainID *big.Int
}

// Backend 链访问
func (p *Provider) Backend() Backend { return p.backend }

// ChainID 校验通过的网络 ID
func (p *Provider) ChainID() *big.Int { return new(big.Int).Set(p.chainID) }

// CallOpts 构造只读调用参数
func (p *Provider) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

// Signer 可签名句柄，携带当前账户
type Signer struct {
	*Provider
	key     *ecdsa.PrivateKey
	address common.Address
}

func newSigner(p *Provider, key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		Provider: p,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address 当前账户地址
func (s *Signer) Address() common.Address { return s.address }

// CallOpts 以当前账户为 From 的只读调用参数
func (s *Signer) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: s.address}
}

// TransactOpts 构造交易参数（EIP-155 签名，链 ID 取校验通过的网络）
func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
