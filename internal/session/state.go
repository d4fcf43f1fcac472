package session

import (
	"github.com/shopspring/decimal"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// ConnectionStatus 是会话连接状态机的状态
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// TxStatus 是交易的生命周期状态
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// TransactionRecord 记录一笔已提交的转账。
// 由提交成功时创建 (Pending), 之后只被对账步骤改写一次,
// 会话内只追加、不删除。
type TransactionRecord struct {
	Hash        string   `json:"hash"`
	Status      TxStatus `json:"status"`
	GasUsed     uint64   `json:"gas_used,omitempty"`
	BlockNumber uint64   `json:"block_number,omitempty"`
}

// State 是会话的全部可观测状态, 单例, 仅由 Store 持有。
// 余额字段只在 StatusConnected 时有意义。
type State struct {
	Status  ConnectionStatus
	Address string
	ChainID uint64

	NativeBalance  decimal.Decimal
	TokenBalance   decimal.Decimal
	PortfolioValue decimal.Decimal

	// Transactions 按提交顺序排列, 最新的在最前
	Transactions []TransactionRecord
	// PendingHashes ⊆ {t.Hash : t.Status == TxPending}
	PendingHashes map[string]struct{}

	LastErr *walleterr.Error

	LoadingBalance     bool
	SendingTransaction bool
}

func initialState() State {
	return State{
		Status:         StatusDisconnected,
		NativeBalance:  decimal.Zero,
		TokenBalance:   decimal.Zero,
		PortfolioValue: decimal.Zero,
		PendingHashes:  map[string]struct{}{},
	}
}

// clone 返回状态的深拷贝, 读取方永远拿不到内部切片/映射的引用
func (s State) clone() State {
	out := s
	out.Transactions = make([]TransactionRecord, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	out.PendingHashes = make(map[string]struct{}, len(s.PendingHashes))
	for h := range s.PendingHashes {
		out.PendingHashes[h] = struct{}{}
	}
	return out
}

// findTx 按哈希定位交易记录, 返回索引或 -1
func (s State) findTx(hash string) int {
	for i := range s.Transactions {
		if s.Transactions[i].Hash == hash {
			return i
		}
	}
	return -1
}
