package session

import "sync"

// Store 是会话状态的唯一写入者。所有变更都经过 Apply,
// 每次转移是全量函数 (state, event) -> state, 不存在部分更新。
// 读取方通过 Snapshot 拿到完整的深拷贝, 永远看不到中间状态。
type Store struct {
	mu    sync.RWMutex
	state State
	epoch uint64
}

func NewStore() *Store {
	return &Store{
		state: initialState(),
		epoch: 1,
	}
}

// Apply 原子地应用一个事件。Disconnect 会推进会话纪元,
// 让所有在旧会话中启动的异步完成回调能识别自己已被替换。
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = reduce(s.state, ev)
	if _, ok := ev.(Disconnect); ok {
		s.epoch++
	}
}

// Snapshot 返回当前状态的深拷贝
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Epoch 返回当前会话纪元。在异步操作启动时记录,
// 完成时比对, 不一致则丢弃结果。
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// reduce 是状态机的转移函数。入参 st 是内部状态的值拷贝,
// 切片/映射可以就地修改 (读取方只拿得到 clone)。
func reduce(st State, ev Event) State {
	switch e := ev.(type) {
	case ConnectRequested:
		st.Status = StatusConnecting
		st.LastErr = nil

	case ConnectSucceeded:
		st.Status = StatusConnected
		st.Address = e.Address
		st.ChainID = e.ChainID
		st.LastErr = nil

	case ConnectFailed:
		st.Status = StatusDisconnected
		if e.Err != nil {
			st.LastErr = e.Err
		}

	case Disconnect:
		// 断开是完整复位, 不保留任何会话数据
		return initialState()

	case BalanceRequested:
		if st.Status == StatusConnected {
			st.LoadingBalance = true
		}

	case BalanceUpdated:
		if st.Status == StatusConnected {
			st.NativeBalance = e.Native
			st.TokenBalance = e.Token
			st.PortfolioValue = e.Portfolio
			st.LoadingBalance = false
		}

	case ChainChanged:
		if st.Status == StatusConnected {
			st.ChainID = e.ChainID
		}

	case SendRequested:
		if st.Status == StatusConnected {
			st.SendingTransaction = true
			st.LastErr = nil
		}

	case SendFinished:
		st.SendingTransaction = false

	case TransactionSubmitted:
		if st.Status != StatusConnected {
			break
		}
		// 同一哈希至多出现一次
		if st.findTx(e.Record.Hash) >= 0 {
			break
		}
		st.Transactions = append([]TransactionRecord{e.Record}, st.Transactions...)
		if e.Record.Status == TxPending {
			st.PendingHashes[e.Record.Hash] = struct{}{}
		}

	case TransactionReconciled:
		i := st.findTx(e.Hash)
		if i < 0 || st.Transactions[i].Status != TxPending {
			// 未知哈希或已终态: 迟到结果, 丢弃
			break
		}
		st.Transactions[i].Status = e.Status
		st.Transactions[i].GasUsed = e.GasUsed
		st.Transactions[i].BlockNumber = e.BlockNumber
		delete(st.PendingHashes, e.Hash)

	case ErrorRaised:
		st.LastErr = e.Err
		st.LoadingBalance = false
		st.SendingTransaction = false
	}

	return st
}
