package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

// 默认网络
const (
	DefaultChainID     int64 = 4
	DefaultNetworkName       = "Rinkeby"
)

var (
	// ErrWrongNetwork 钱包连接的网络不是要求的网络
	ErrWrongNetwork = errors.New("wrong network")
	// ErrNoSigner 未配置签名私钥
	ErrNoSigner = errors.New("no signing key configured")
	// ErrClosed 会话已关闭
	ErrClosed = errors.New("wallet connector closed")
)

// WrongNetworkError 网络不匹配，errors.Is(err, ErrWrongNetwork) 为 true
type WrongNetworkError struct {
	Got     *big.Int
	Want    *big.Int
	Network string
}

func (e *WrongNetworkError) Error() string {
	return fmt.Sprintf("wrong network: connected to chain %s, want %s (%s)", e.Got, e.Want, e.Network)
}

// Unwrap 返回 ErrWrongNetwork
func (e *WrongNetworkError) Unwrap() error { return ErrWrongNetwork }

// Dialer 打开底层会话
type Dialer func(ctx context.Context) (Backend, error)

// DialRPC 通过 JSON-RPC 连接节点
func DialRPC(rpcURL string) Dialer {
	return func(ctx context.Context) (Backend, error) {
		client, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
		}
		return client, nil
	}
}

// StaticDialer 直接返回已有的后端
func StaticDialer(b Backend) Dialer {
	return func(context.Context) (Backend, error) { return b, nil }
}

// Options 连接器参数
type Options struct {
	ChainID     int64  // 接受的网络 ID，0 表示 DefaultChainID
	NetworkName string // 提示中使用的网络名称
	Key         *ecdsa.PrivateKey
}

// Connector 钱包会话：首次使用时建立，之后复用，Close 时释放
type Connector struct {
	mu      sync.Mutex
	dial    Dialer
	backend Backend
	closed  bool

	chainID *big.Int
	network string
	key     *ecdsa.PrivateKey
	alerter Alerter
	logger  logiface.Logger
}

// NewConnector 创建连接器
func NewConnector(dial Dialer, opts Options, alerter Alerter, logger logiface.Logger) *Connector {
	chainID := opts.ChainID
	if chainID == 0 {
		chainID = DefaultChainID
	}
	network := opts.NetworkName
	if network == "" {
		network = DefaultNetworkName
	}
	if alerter == nil {
		alerter = NopAlerter{}
	}
	return &Connector{
		dial:    dial,
		chainID: big.NewInt(chainID),
		network: network,
		key:     opts.Key,
		alerter: alerter,
		logger:  log.NewModuleLogger(logger, "wallet"),
	}
}

// HasSigner 是否配置了签名私钥
func (c *Connector) HasSigner() bool {
	return c.key != nil
}

// Account 签名账户地址（未配置私钥时为空）
func (c *Connector) Account() string {
	if c.key == nil {
		return ""
	}
	return crypto.PubkeyToAddress(c.key.PublicKey).Hex()
}

// Network 要求的网络名称
func (c *Connector) Network() string { return c.network }

// WrongNetworkAlert 网络不匹配时的提示文本
func (c *Connector) WrongNetworkAlert() string {
	return fmt.Sprintf("Change the network to %s.", c.network)
}

// GetProviderOrSigner 打开或复用会话，校验网络后返回只读或签名句柄
func (c *Connector) GetProviderOrSigner(ctx context.Context, needSigner bool) (Handle, error) {
	backend, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	got, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if got.Cmp(c.chainID) != 0 {
		c.alerter.Alert(c.WrongNetworkAlert())
		c.logger.Warnf("钱包网络不匹配: chain=%s want=%s", got, c.chainID)
		return nil, &WrongNetworkError{Got: got, Want: new(big.Int).Set(c.chainID), Network: c.network}
	}

	provider := &Provider{backend: backend, chainID: got}
	if !needSigner {
		return provider, nil
	}
	if c.key == nil {
		return nil, ErrNoSigner
	}
	return newSigner(provider, c.key), nil
}

// Provider 获取只读句柄
func (c *Connector) Provider(ctx context.Context) (*Provider, error) {
	h, err := c.GetProviderOrSigner(ctx, false)
	if err != nil {
		return nil, err
	}
	return h.(*Provider), nil
}

// Signer 获取签名句柄
func (c *Connector) Signer(ctx context.Context) (*Signer, error) {
	h, err := c.GetProviderOrSigner(ctx, true)
	if err != nil {
		return nil, err
	}
	return h.(*Signer), nil
}

func (c *Connector) session(ctx context.Context) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.backend != nil {
		return c.backend, nil
	}
	backend, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("open wallet session: %w", err)
	}
	c.backend = backend
	c.logger.Debug("钱包会话已建立")
	return backend, nil
}

// Close 关闭会话，之后的调用返回 ErrClosed
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
	c.backend = nil
	return nil
}
