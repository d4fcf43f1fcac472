package engine

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/provider"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/service/mq"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/session"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/address"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/bip39"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/chains"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/logger"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/monitor"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/units"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// Options 配置引擎的可替换协作方与对账参数
type Options struct {
	// Price 为空时使用内置固定价格表
	Price PriceSource
	// Producer 为空时禁用事件发布
	Producer mq.Producer
	Topic    string

	ReceiptPollInterval time.Duration
	ReceiptTimeout      time.Duration
}

// Engine 是钱包会话引擎的门面: 端点选择、连接状态机、
// 余额查询与转账提交/对账流水线都从这里进入。
// 展示层只读取 Snapshot 并调用这里的操作。
type Engine struct {
	store     *session.Store
	registry  *provider.Registry
	estimator GasEstimator
	price     PriceSource
	producer  mq.Producer
	topic     string
	mnemonics *bip39.MnemonicService

	pollInterval   time.Duration
	receiptTimeout time.Duration

	// mu 保护当前会话的端点引用与订阅注销器。
	// 端点句柄被会话内所有操作只读共享, 状态的独占修改权只属于 store。
	mu     sync.Mutex
	prov   provider.Provider
	unsubs []func()

	// wg 跟踪分离的后台任务 (对账、自动刷新), 供优雅退出等待
	wg sync.WaitGroup
}

func New(registry *provider.Registry, opts Options) *Engine {
	e := &Engine{
		store:          session.NewStore(),
		registry:       registry,
		price:          opts.Price,
		producer:       opts.Producer,
		topic:          opts.Topic,
		mnemonics:      bip39.NewMnemonicService(),
		pollInterval:   opts.ReceiptPollInterval,
		receiptTimeout: opts.ReceiptTimeout,
	}
	if e.price == nil {
		e.price = defaultPriceSource()
	}
	if e.topic == "" {
		e.topic = "wallet_events_tx"
	}
	if e.pollInterval <= 0 {
		e.pollInterval = 2 * time.Second
	}
	if e.receiptTimeout <= 0 {
		e.receiptTimeout = 5 * time.Minute
	}
	return e
}

// Snapshot 返回当前会话状态的完整深拷贝
func (e *Engine) Snapshot() session.State {
	return e.store.Snapshot()
}

// NetworkName 返回当前链的展示名称, 未连接时默认按主网渲染
func (e *Engine) NetworkName() string {
	id := e.store.Snapshot().ChainID
	if id == 0 {
		id = 1
	}
	return chains.NetworkName(id)
}

// IsValidAddress 是给展示层的纯工具函数
func (e *Engine) IsValidAddress(addr string) bool {
	return address.IsValid(addr)
}

// FormatBalance 是给展示层的纯工具函数
func (e *Engine) FormatBalance(balance string) string {
	return units.FormatBalance(balance)
}

// Connect 发起显式连接: 端点选择 → 账户授权 → 链查询 → 会话建立。
// 用户在签名器中拒绝授权属于预期操作, 状态复位但不进入错误槽。
func (e *Engine) Connect(ctx context.Context) error {
	e.store.Apply(session.ConnectRequested{})
	if m := monitor.Session; m != nil {
		m.ConnectAttemptsTotal.Inc()
	}

	// 受限嵌入上下文中直接中止, 不触碰任何端点
	if e.registry.Embedded() {
		return e.failConnect(walleterr.ErrIframeBlocked)
	}

	desc, ok := e.registry.Select()
	if !ok {
		return e.failConnect(walleterr.ErrNoWalletFound)
	}

	accounts, err := e.requestAccounts(ctx, desc.Provider, "eth_requestAccounts")
	if err != nil {
		if provider.IsUserRejected(err) {
			e.store.Apply(session.ConnectFailed{})
			return walleterr.Wrap(walleterr.KindUserRejected, "User rejected the connection request", err)
		}
		return e.failConnect(walleterr.Wrap(walleterr.KindInternal, "Failed to connect wallet", err))
	}
	if len(accounts) == 0 {
		return e.failConnect(walleterr.ErrNoAccounts)
	}

	return e.establish(ctx, desc, accounts[0], false)
}

// Resume 静默恢复会话: 只用 eth_accounts 探测已授权账户,
// 绝不发起授权弹窗, 失败与空账户都按"无会话"处理。
// 嵌入上下文中禁用。
func (e *Engine) Resume(ctx context.Context) error {
	if e.registry.Embedded() {
		logger.Warn("嵌入上下文中禁用自动连接")
		return nil
	}

	desc, ok := e.registry.Select()
	if !ok {
		return nil
	}

	accounts, err := e.requestAccounts(ctx, desc.Provider, "eth_accounts")
	if err != nil {
		logger.Debug("静默恢复探测失败", zap.Error(err))
		return nil
	}
	if len(accounts) == 0 {
		return nil
	}

	e.store.Apply(session.ConnectRequested{})
	return e.establish(ctx, desc, accounts[0], true)
}

// Disconnect 结束当前会话: 注销全部订阅, 状态完整复位。
// 在途的异步结果会因纪元推进而在到达时被丢弃。
func (e *Engine) Disconnect() {
	e.mu.Lock()
	unsubs := e.unsubs
	e.unsubs = nil
	e.prov = nil
	e.mu.Unlock()

	for _, un := range unsubs {
		un()
	}
	e.store.Apply(session.Disconnect{})
	logger.Info("钱包已断开")
}

// RefreshBalance 查询原生余额并重算投资组合估值。
// 并发调用允许重叠, 状态机按事件到达顺序采用后写胜出,
// 不做同会话内的新旧判定; 纪元检查只保证被替换会话的结果不污染新会话。
func (e *Engine) RefreshBalance(ctx context.Context) error {
	snap := e.store.Snapshot()
	p := e.currentProvider()
	if snap.Status != session.StatusConnected || p == nil {
		return walleterr.ErrNotConnected
	}
	epoch := e.store.Epoch()

	e.store.Apply(session.BalanceRequested{})
	if m := monitor.Session; m != nil {
		m.BalanceRefreshTotal.Inc()
	}

	wei, err := e.getBalance(ctx, p, snap.Address)
	if err != nil {
		wErr := walleterr.Wrap(walleterr.KindInternal, "Failed to fetch balance", err)
		if e.store.Epoch() == epoch {
			e.store.Apply(session.ErrorRaised{Err: wErr})
		}
		return wErr
	}

	native := decimal.NewFromBigInt(wei, -units.EtherDecimals)
	token := decimal.Zero // LOT 余额需要 ERC-20 结算通道, 尚未接入
	portfolio := native.Mul(e.price.Price("ETH")).
		Add(token.Mul(e.price.Price("LOT"))).
		Round(2)

	if e.store.Epoch() != epoch {
		return nil
	}
	e.store.Apply(session.BalanceUpdated{Native: native, Token: token, Portfolio: portfolio})
	return nil
}

// Wait 阻塞直到所有后台任务退出 (优雅退出与测试用)
func (e *Engine) Wait() {
	e.wg.Wait()
}

// establish 完成会话建立的共同路径。silent 表示静默恢复:
// 建立失败时不进入错误槽, 按"无会话"复位。
func (e *Engine) establish(ctx context.Context, desc provider.Descriptor, account string, silent bool) error {
	addr := account
	if address.IsValid(addr) {
		addr = address.Normalize(addr)
	}

	chainID, err := e.chainID(ctx, desc.Provider)
	if err != nil {
		if silent {
			e.store.Apply(session.ConnectFailed{})
			logger.Debug("静默恢复中止", zap.Error(err))
			return nil
		}
		return e.failConnect(walleterr.Wrap(walleterr.KindInternal, "Failed to query active chain", err))
	}

	e.mu.Lock()
	e.prov = desc.Provider
	e.mu.Unlock()

	e.store.Apply(session.ConnectSucceeded{Address: addr, ChainID: chainID})
	epoch := e.store.Epoch()
	e.attach(desc.Provider, epoch, addr)

	logger.Info("钱包已连接",
		zap.String("address", addr),
		zap.Uint64("chain_id", chainID),
		zap.String("network", chains.NetworkName(chainID)),
		zap.String("endpoint", desc.Name))

	// 连接成功后自动刷新一次余额
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		rctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if e.store.Epoch() == epoch {
			_ = e.RefreshBalance(rctx)
		}
	}()

	return nil
}

// attach 订阅端点的带外通知, 注销器与会话同生命周期。
// 每个 handler 先校验纪元, 被替换会话的通知按无操作丢弃。
func (e *Engine) attach(p provider.Provider, epoch uint64, account string) {
	unAccounts := p.On(provider.EventAccountsChanged, func(payload json.RawMessage) {
		if e.store.Epoch() != epoch {
			return
		}
		var accounts []string
		if err := json.Unmarshal(payload, &accounts); err != nil {
			return
		}
		if len(accounts) == 0 {
			e.Disconnect()
			return
		}
		if !strings.EqualFold(accounts[0], account) {
			// 账户切换: 重置会话后静默恢复到新账户
			e.Disconnect()
			rctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = e.Resume(rctx)
		}
	})

	unChain := p.On(provider.EventChainChanged, func(payload json.RawMessage) {
		if e.store.Epoch() != epoch {
			return
		}
		var hexID string
		if err := json.Unmarshal(payload, &hexID); err != nil {
			return
		}
		id, err := hexutil.DecodeUint64(hexID)
		if err != nil {
			return
		}
		e.store.Apply(session.ChainChanged{ChainID: id})
	})

	unDisconnect := p.On(provider.EventDisconnect, func(json.RawMessage) {
		if e.store.Epoch() != epoch {
			return
		}
		e.Disconnect()
	})

	e.mu.Lock()
	e.unsubs = append(e.unsubs, unAccounts, unChain, unDisconnect)
	e.mu.Unlock()
}

func (e *Engine) failConnect(err *walleterr.Error) error {
	e.store.Apply(session.ConnectFailed{Err: err})
	if m := monitor.Session; m != nil {
		m.ConnectFailuresTotal.WithLabelValues(string(err.Kind)).Inc()
	}
	logger.Warn("钱包连接失败", zap.String("kind", string(err.Kind)), zap.Error(err))
	return err
}

func (e *Engine) currentProvider() provider.Provider {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prov
}

func (e *Engine) requestAccounts(ctx context.Context, p provider.Provider, method string) ([]string, error) {
	raw, err := p.Request(ctx, method)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (e *Engine) chainID(ctx context.Context, p provider.Provider) (uint64, error) {
	raw, err := p.Request(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}
	var hexID string
	if err := json.Unmarshal(raw, &hexID); err != nil {
		return 0, err
	}
	return hexutil.DecodeUint64(hexID)
}

func (e *Engine) getBalance(ctx context.Context, p provider.Provider, addr string) (*big.Int, error) {
	raw, err := p.Request(ctx, "eth_getBalance", addr, "latest")
	if err != nil {
		return nil, err
	}
	var bal hexutil.Big
	if err := json.Unmarshal(raw, &bal); err != nil {
		return nil, err
	}
	return (*big.Int)(&bal), nil
}
