package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/provider"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/session"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/address"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/logger"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/monitor"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/units"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// SendParams 描述一笔转账请求。Amount 是十进制以太字符串,
// GasLimit 非空时跳过估算, 由调用方显式指定。
type SendParams struct {
	To       string `json:"to" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency"`
	GasLimit string `json:"gas_limit"`
}

// Send 执行完整的转账流水线: 资产与地址校验、精确换算、
// 提交前余额检查、Gas 预算、提交, 然后启动分离的对账任务。
// 任何校验失败都发生在网络提交之前, 交易历史保持不变。
func (e *Engine) Send(ctx context.Context, params SendParams) (string, error) {
	snap := e.store.Snapshot()
	p := e.currentProvider()
	if snap.Status != session.StatusConnected || p == nil {
		return "", walleterr.ErrNotConnected
	}
	epoch := e.store.Epoch()

	e.store.Apply(session.SendRequested{})
	defer e.store.Apply(session.SendFinished{})

	currency := params.Currency
	if currency == "" {
		currency = "ETH"
	}
	// LOT 等二级资产尚无链上结算通道
	if currency != "ETH" {
		return e.failSend(walleterr.ErrUnsupportedAsset)
	}

	if !address.IsValid(params.To) {
		return e.failSend(walleterr.ErrInvalidAddress)
	}

	value, err := units.EtherToWei(params.Amount)
	if err != nil {
		return e.failSend(asWalletErr(err))
	}

	// 提交前余额检查, 余额不足时不产生任何提交
	balance, err := e.getBalance(ctx, p, snap.Address)
	if err != nil {
		return e.failSend(walleterr.Wrap(walleterr.KindInternal, "Failed to fetch balance", err))
	}
	if balance.Cmp(value) < 0 {
		return e.failSend(walleterr.ErrInsufficient)
	}

	// Gas 预算: 调用方显式覆盖优先, 否则委托端点估算
	var gas uint64
	if params.GasLimit != "" {
		gas, err = strconv.ParseUint(params.GasLimit, 10, 64)
		if err != nil {
			return e.failSend(walleterr.Wrap(walleterr.KindInvalidAmount, "Invalid gas limit", err))
		}
	} else {
		gas, err = e.estimator.Estimate(ctx, p, snap.Address, params.To, value)
		if err != nil {
			return e.failSend(asWalletErr(err))
		}
	}

	hash, err := e.submit(ctx, p, snap.Address, params.To, value, gas)
	if err != nil {
		if provider.IsUserRejected(err) {
			// 用户拒绝签名属于预期操作, 不进入错误槽
			return "", walleterr.Wrap(walleterr.KindUserRejected, "Transaction rejected by user", err)
		}
		return e.failSend(walleterr.Wrap(walleterr.KindTransactionFailed, "Transaction failed", err))
	}

	// 会话在提交期间被替换: 孤立的提交不得混入新会话的历史,
	// 否则对账结果会因纪元不符被丢弃, 记录永远停留在 Pending
	if e.store.Epoch() != epoch {
		logger.Warn("会话已更替, 丢弃在途提交", zap.String("hash", hash))
		return "", walleterr.ErrNotConnected
	}

	e.store.Apply(session.TransactionSubmitted{Record: session.TransactionRecord{
		Hash:   hash,
		Status: session.TxPending,
	}})
	if m := monitor.Session; m != nil {
		m.TransactionsSubmittedTotal.Inc()
		m.PendingTransactions.Inc()
	}
	e.publishTxEvent(hash, session.TxPending, 0, 0)
	logger.Info("转账已提交",
		zap.String("hash", hash),
		zap.String("to", params.To),
		zap.String("amount", params.Amount))

	// 分离的对账任务, 不阻塞调用方
	e.wg.Add(1)
	go e.reconcile(p, hash, epoch)

	return hash, nil
}

// EstimateGas 对一笔假想转账做 Gas 预估, 不产生任何提交
func (e *Engine) EstimateGas(ctx context.Context, params SendParams) (uint64, error) {
	snap := e.store.Snapshot()
	p := e.currentProvider()
	if snap.Status != session.StatusConnected || p == nil {
		return 0, walleterr.ErrNotConnected
	}
	if !address.IsValid(params.To) {
		return 0, walleterr.ErrInvalidAddress
	}
	value, err := units.EtherToWei(params.Amount)
	if err != nil {
		return 0, err
	}
	return e.estimator.Estimate(ctx, p, snap.Address, params.To, value)
}

// GasPrice 查询端点建议的 Gas 价格 (Wei)
func (e *Engine) GasPrice(ctx context.Context) (*big.Int, error) {
	p := e.currentProvider()
	if p == nil {
		return nil, walleterr.ErrNotConnected
	}
	return e.estimator.GasPrice(ctx, p)
}

func (e *Engine) submit(ctx context.Context, p provider.Provider, from, to string, value *big.Int, gas uint64) (string, error) {
	raw, err := p.Request(ctx, "eth_sendTransaction", txArg{
		From:  from,
		To:    to,
		Value: (*hexutil.Big)(value),
		Gas:   hexutil.Uint64(gas),
	})
	if err != nil {
		return "", err
	}
	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

type txReceipt struct {
	Status      hexutil.Uint64 `json:"status"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
}

func (e *Engine) getReceipt(ctx context.Context, p provider.Provider, hash string) (*txReceipt, error) {
	raw, err := p.Request(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	// null 表示尚未打包
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var r txReceipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// reconcile 轮询回执直到交易结算。与提交方完全解耦:
// 无论网络错误还是超时, 记录都必须落到终态, 绝不永久停留在 Pending。
// 会话被替换后迟到的结果按无操作丢弃。
func (e *Engine) reconcile(p provider.Provider, hash string, epoch uint64) {
	defer e.wg.Done()
	start := time.Now()

	status := session.TxFailed
	var gasUsed, blockNumber uint64

	deadline := time.NewTimer(e.receiptTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

poll:
	for {
		select {
		case <-ticker.C:
			rcpt, err := e.getReceipt(context.Background(), p, hash)
			if err != nil {
				logger.Warn("回执查询失败, 交易按失败结算", zap.String("hash", hash), zap.Error(err))
				break poll
			}
			if rcpt == nil {
				continue
			}
			if rcpt.Status == 1 {
				status = session.TxConfirmed
			}
			gasUsed = uint64(rcpt.GasUsed)
			blockNumber = uint64(rcpt.BlockNumber)
			break poll
		case <-deadline.C:
			logger.Warn("回执等待超时, 交易按失败结算", zap.String("hash", hash))
			break poll
		}
	}

	if e.store.Epoch() != epoch {
		return
	}

	e.store.Apply(session.TransactionReconciled{
		Hash:        hash,
		Status:      status,
		GasUsed:     gasUsed,
		BlockNumber: blockNumber,
	})
	if m := monitor.Session; m != nil {
		m.TransactionsReconciledTotal.WithLabelValues(string(status)).Inc()
		m.ReconcileDuration.Observe(time.Since(start).Seconds())
		m.PendingTransactions.Dec()
	}
	e.publishTxEvent(hash, status, gasUsed, blockNumber)
	logger.Info("交易已结算",
		zap.String("hash", hash),
		zap.String("status", string(status)),
		zap.Uint64("gas_used", gasUsed),
		zap.Uint64("block_number", blockNumber))

	if status == session.TxConfirmed {
		// 结算成功后刷新一次余额
		rctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = e.RefreshBalance(rctx)
	}
}

type txEvent struct {
	Hash        string `json:"hash"`
	Status      string `json:"status"`
	GasUsed     uint64 `json:"gas_used,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	Address     string `json:"address,omitempty"`
	ChainID     uint64 `json:"chain_id,omitempty"`
	At          int64  `json:"at"`
}

// publishTxEvent 把交易生命周期事件投递到消息通道, 供下游审计与通知。
// 发布失败只记日志, 不影响会话状态。
func (e *Engine) publishTxEvent(hash string, status session.TxStatus, gasUsed, blockNumber uint64) {
	if e.producer == nil {
		return
	}
	snap := e.store.Snapshot()
	payload, err := json.Marshal(txEvent{
		Hash:        hash,
		Status:      string(status),
		GasUsed:     gasUsed,
		BlockNumber: blockNumber,
		Address:     snap.Address,
		ChainID:     snap.ChainID,
		At:          time.Now().Unix(),
	})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.producer.Publish(ctx, e.topic, hash, payload); err != nil {
		logger.Warn("交易事件发布失败", zap.String("hash", hash), zap.Error(err))
	}
}

func (e *Engine) failSend(err *walleterr.Error) (string, error) {
	e.store.Apply(session.ErrorRaised{Err: err})
	return "", err
}

func asWalletErr(err error) *walleterr.Error {
	var wErr *walleterr.Error
	if errors.As(err, &wErr) {
		return wErr
	}
	return walleterr.Wrap(walleterr.KindInternal, err.Error(), err)
}
