package session

import (
	"github.com/shopspring/decimal"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// Event 是状态机的输入。每个事件对应一次原子转移;
// 对当前状态无效的事件按无操作处理, 以容忍被替换会话的迟到异步结果。
type Event interface {
	isEvent()
}

// ConnectRequested 开始一次连接尝试, 清除上一次的错误
type ConnectRequested struct{}

// ConnectSucceeded 连接建立
type ConnectSucceeded struct {
	Address string
	ChainID uint64
}

// ConnectFailed 连接失败。Err 为 nil 表示静默中止
// (用户拒绝授权属于预期操作, 不进入错误槽)。
type ConnectFailed struct {
	Err *walleterr.Error
}

// Disconnect 无条件回到完整的初始状态, 不存在部分断开
type Disconnect struct{}

// BalanceRequested 标记余额查询进行中
type BalanceRequested struct{}

// BalanceUpdated 写入最新余额与投资组合估值
type BalanceUpdated struct {
	Native    decimal.Decimal
	Token     decimal.Decimal
	Portfolio decimal.Decimal
}

// ChainChanged 活动链切换通知
type ChainChanged struct {
	ChainID uint64
}

// SendRequested 开始一次转账尝试, 清除上一次的错误
type SendRequested struct{}

// SendFinished 转账尝试结束 (无论成败), 清除进行中标记
type SendFinished struct{}

// TransactionSubmitted 提交成功, 追加 Pending 记录
type TransactionSubmitted struct {
	Record TransactionRecord
}

// TransactionReconciled 对账完成, 把 Pending 记录改写为终态。
// 已处于终态的记录不会被改写 (终态只进不出)。
type TransactionReconciled struct {
	Hash        string
	Status      TxStatus
	GasUsed     uint64
	BlockNumber uint64
}

// ErrorRaised 写入错误槽, 同时复位所有进行中标记,
// 保证 UI 不会在失败后停留在永久加载状态
type ErrorRaised struct {
	Err *walleterr.Error
}

func (ConnectRequested) isEvent()      {}
func (ConnectSucceeded) isEvent()      {}
func (ConnectFailed) isEvent()         {}
func (Disconnect) isEvent()            {}
func (BalanceRequested) isEvent()      {}
func (BalanceUpdated) isEvent()        {}
func (ChainChanged) isEvent()          {}
func (SendRequested) isEvent()         {}
func (SendFinished) isEvent()          {}
func (TransactionSubmitted) isEvent()  {}
func (TransactionReconciled) isEvent() {}
func (ErrorRaised) isEvent()           {}
