// Package page 白名单页面的状态机：钱包连接、人数与成员查询、加入白名单
package page

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/event"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
	eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

var (
	// ErrNotConnected 钱包尚未连接
	ErrNotConnected = errors.New("wallet not connected")
	// ErrJoinInProgress 已有加入请求在进行
	ErrJoinInProgress = errors.New("join already in progress")
	// ErrAlreadyJoined 当前账户已在白名单中
	ErrAlreadyJoined = errors.New("address already whitelisted")
)

// Wallet 钱包会话
type Wallet interface {
	GetProviderOrSigner(ctx context.Context, needSigner bool) (wallet.Handle, error)
}

// Whitelist 合约读写
type Whitelist interface {
	NumberOfWhitelisted(ctx context.Context) (uint64, error)
	IsWhitelisted(ctx context.Context) (common.Address, bool, error)
	SubmitJoin(ctx context.Context) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Home 白名单页面
//
// 状态只在 mu 下修改；链上调用期间不持锁。
// publishMu 保证快照按生成顺序发布。
type Home struct {
	wallet    Wallet
	whitelist Whitelist
	alerts    *AlertBox
	bus       eventiface.EventBus
	metrics   *metrics.Collector
	logger    logiface.Logger

	mountOnce sync.Once
	joins     sync.WaitGroup
	publishMu sync.Mutex

	mu        sync.Mutex
	connected bool
	joined    bool
	loading   bool
	joining   bool
	count     uint64
	account   common.Address
	lastPhase Phase
}

// Options Home 依赖
type Options struct {
	Wallet    Wallet
	Whitelist Whitelist
	Alerts    *AlertBox           // 可选
	Bus       eventiface.EventBus // 可选
	Metrics   *metrics.Collector  // 可选
	Logger    logiface.Logger     // 可选
}

// NewHome 创建页面
func NewHome(opts Options) *Home {
	alerts := opts.Alerts
	if alerts == nil {
		alerts = NewAlertBox()
	}
	h := &Home{
		wallet:    opts.Wallet,
		whitelist: opts.Whitelist,
		alerts:    alerts,
		bus:       opts.Bus,
		metrics:   opts.Metrics,
		logger:    log.NewModuleLogger(opts.Logger, "page"),
		lastPhase: PhaseDisconnected,
	}
	alerts.onAlert(h.onAlert)
	return h
}

// Mount 页面首次加载时自动连接钱包，只执行一次
func (h *Home) Mount(ctx context.Context) error {
	var err error
	ran := false
	h.mountOnce.Do(func() {
		ran = true
		err = h.ConnectWallet(ctx)
	})
	if !ran {
		return nil
	}
	return err
}

// ConnectWallet 连接钱包，成功后依次刷新成员身份与人数
func (h *Home) ConnectWallet(ctx context.Context) error {
	if _, err := h.wallet.GetProviderOrSigner(ctx, false); err != nil {
		h.logger.Errorf("连接钱包失败: %v", err)
		h.publish()
		return fmt.Errorf("connect wallet: %w", err)
	}

	h.mu.Lock()
	h.connected = true
	h.mu.Unlock()

	h.CheckIfAddressInWhitelist(ctx)
	h.GetNumberOfWhitelisted(ctx)
	h.publish()
	return nil
}

// GetNumberOfWhitelisted 刷新白名单人数；失败时记录日志并保留原值
func (h *Home) GetNumberOfWhitelisted(ctx context.Context) uint64 {
	n, err := h.whitelist.NumberOfWhitelisted(ctx)

	h.mu.Lock()
	if err == nil {
		h.count = n
	}
	count := h.count
	h.mu.Unlock()

	if err != nil {
		h.logger.Errorf("查询白名单人数失败: %v", err)
		return count
	}
	h.metrics.SetWhitelistCount(count)
	return count
}

// CheckIfAddressInWhitelist 刷新当前账户的成员身份；失败时记录日志并保留原值
func (h *Home) CheckIfAddressInWhitelist(ctx context.Context) bool {
	account, member, err := h.whitelist.IsWhitelisted(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Errorf("查询白名单成员失败: %v", err)
		return h.joined
	}
	h.account = account
	h.joined = member
	return member
}

// AddAddressToWhitelist 提交加入交易并等待确认
func (h *Home) AddAddressToWhitelist(ctx context.Context) error {
	if err := h.beginJoin(); err != nil {
		return err
	}
	return h.runJoin(ctx)
}

// JoinAsync 校验后在后台执行加入流程，校验失败立即返回
func (h *Home) JoinAsync(ctx context.Context) error {
	if err := h.beginJoin(); err != nil {
		return err
	}
	h.joins.Add(1)
	go func() {
		defer h.joins.Done()
		_ = h.runJoin(ctx)
	}()
	return nil
}

// Wait 等待后台加入流程结束
func (h *Home) Wait() {
	h.joins.Wait()
}

func (h *Home) beginJoin() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case !h.connected:
		return ErrNotConnected
	case h.joining:
		return ErrJoinInProgress
	case h.joined:
		return ErrAlreadyJoined
	}
	h.joining = true
	return nil
}

func (h *Home) runJoin(ctx context.Context) error {
	defer func() {
		h.mu.Lock()
		h.joining = false
		h.mu.Unlock()
	}()

	tx, err := h.whitelist.SubmitJoin(ctx)
	if err != nil {
		h.logger.Errorf("加入白名单失败: %v", err)
		h.publish()
		return fmt.Errorf("join whitelist: %w", err)
	}

	h.setLoading(true)
	if _, err := h.whitelist.WaitMined(ctx, tx); err != nil {
		// 失败时复位，按钮回到可加入状态
		h.setLoading(false)
		h.logger.With("tx", tx.Hash().Hex()).Errorf("加入白名单交易失败: %v", err)
		return fmt.Errorf("join whitelist: %w", err)
	}

	h.GetNumberOfWhitelisted(ctx)

	h.mu.Lock()
	h.loading = false
	h.joined = true
	h.mu.Unlock()
	h.logger.With("tx", tx.Hash().Hex()).Info("已加入白名单")
	h.publish()
	return nil
}

func (h *Home) setLoading(v bool) {
	h.mu.Lock()
	h.loading = v
	h.mu.Unlock()
	h.publish()
}

// Phase 当前阶段
func (h *Home) Phase() Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return phaseOf(h.connected, h.joined, h.loading)
}

// RenderButton 当前按钮
func (h *Home) RenderButton() Button {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buttonLocked()
}

// buttonLocked 交易发出前按钮保持原文案但不可点击
func (h *Home) buttonLocked() Button {
	b := buttonOf(h.connected, h.joined, h.loading)
	if h.joining && b.Action == ActionJoin {
		b.Action = ActionNone
		b.Disabled = true
	}
	return b
}

// Count 最近一次成功查询到的人数
func (h *Home) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Snapshot 页面视图快照
func (h *Home) Snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Home) snapshotLocked() State {
	s := State{
		Phase:     phaseOf(h.connected, h.joined, h.loading),
		Connected: h.connected,
		Joined:    h.joined,
		Loading:   h.loading,
		Count:     h.count,
		Button:    h.buttonLocked(),
		Alert:     h.alerts.Peek(),
	}
	if h.account != (common.Address{}) {
		s.Account = h.account.Hex()
	}
	return s
}

// TakeAlert 取出一条待展示的提示
func (h *Home) TakeAlert() string {
	return h.alerts.Take()
}

// Alerts 提示箱（交给钱包连接器）
func (h *Home) Alerts() *AlertBox {
	return h.alerts
}

// onAlert 钱包提示：先广播提示文本，再发布带提示的快照
func (h *Home) onAlert(msg string) {
	h.logger.Warnf("钱包提示: %s", msg)
	if h.bus != nil {
		h.bus.Publish(event.WalletAlert, msg)
	}
	h.publish()
}

// publish 把最新快照发布到事件总线
func (h *Home) publish() {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	state := h.snapshotLocked()
	changed := state.Phase != h.lastPhase
	h.lastPhase = state.Phase
	h.mu.Unlock()

	if changed {
		h.metrics.ObservePhase(string(state.Phase))
		h.logger.Debugf("页面阶段: %s", state.Phase)
	}
	if h.bus != nil {
		h.bus.Publish(event.PageStateChanged, state)
	}
}
