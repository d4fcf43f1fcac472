package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/provider"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/session"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

const (
	testRecipient = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testTxHash    = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
)

// capturingProducer 记录发布的全部生命周期事件
type capturingProducer struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	Topic   string
	Key     string
	Payload []byte
}

func (p *capturingProducer) Publish(_ context.Context, topic string, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (p *capturingProducer) Close() error { return nil }

func (p *capturingProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func (p *capturingProducer) all() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// stubSendPipeline 打桩一次可以成功提交并确认的转账
func stubSendPipeline(p *fakeProvider) {
	p.stub("eth_estimateGas", `"0x5208"`)
	p.stub("eth_sendTransaction", fmt.Sprintf("%q", testTxHash))
	p.stub("eth_getTransactionReceipt", `{"status":"0x1","gasUsed":"0x5208","blockNumber":"0x64"}`)
}

func validParams() SendParams {
	return SendParams{To: testRecipient, Amount: "0.1"}
}

func newEngineWithProducer(p *fakeProvider, producer *capturingProducer) *Engine {
	src := &provider.StaticSource{
		Endpoints: []provider.Descriptor{{Name: "metamask", Preferred: true, Provider: p}},
	}
	return New(provider.NewRegistry(src, false), Options{
		Producer:            producer,
		ReceiptPollInterval: 5 * time.Millisecond,
		ReceiptTimeout:      300 * time.Millisecond,
	})
}

func TestSendNotConnected(t *testing.T) {
	e := newTestEngine(happyProvider(), false)

	_, err := e.Send(context.Background(), validParams())
	require.Error(t, err)
	assert.Equal(t, walleterr.KindNotConnected, walleterr.KindOf(err))
}

func TestSendUnsupportedAsset(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)

	params := validParams()
	params.Currency = "LOT"
	_, err := e.Send(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, walleterr.KindUnsupportedAsset, walleterr.KindOf(err))

	snap := e.Snapshot()
	assert.Empty(t, snap.Transactions, "校验失败不得产生任何提交")
	assert.Equal(t, 0, p.callCount("eth_sendTransaction"))
	require.NotNil(t, snap.LastErr)
	assert.Equal(t, walleterr.KindUnsupportedAsset, snap.LastErr.Kind)
	assert.False(t, snap.SendingTransaction)
}

func TestSendInvalidAddress(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)

	for _, to := range []string{"", "0x123", "not-an-address", "0xG0997970C51812dc3A010C7d01b50e0d17dc79C8"} {
		params := validParams()
		params.To = to
		_, err := e.Send(context.Background(), params)
		require.Error(t, err, "to=%q", to)
		assert.Equal(t, walleterr.KindInvalidAddress, walleterr.KindOf(err), "to=%q", to)
	}
	assert.Empty(t, e.Snapshot().Transactions)
	assert.Equal(t, 0, p.callCount("eth_sendTransaction"))
}

func TestSendInvalidAmount(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)

	for _, amount := range []string{"abc", "", "-1", "0.0000000000000000001"} {
		params := validParams()
		params.Amount = amount
		_, err := e.Send(context.Background(), params)
		require.Error(t, err, "amount=%q", amount)
		assert.Equal(t, walleterr.KindInvalidAmount, walleterr.KindOf(err), "amount=%q", amount)
	}
	assert.Equal(t, 0, p.callCount("eth_sendTransaction"))
}

func TestSendInsufficientFunds(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)

	// 余额 1 ETH, 转 1.5 ETH
	params := validParams()
	params.Amount = "1.5"
	_, err := e.Send(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, walleterr.KindInsufficientFunds, walleterr.KindOf(err))

	snap := e.Snapshot()
	assert.Empty(t, snap.Transactions)
	assert.Equal(t, 0, p.callCount("eth_sendTransaction"))
	require.NotNil(t, snap.LastErr)
	assert.Equal(t, walleterr.KindInsufficientFunds, snap.LastErr.Kind)
}

func TestSendUserRejectedSignature(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stubErr("eth_sendTransaction", &fakeRPCError{code: 4001, msg: "User denied transaction signature"})

	_, err := e.Send(context.Background(), validParams())
	require.Error(t, err)
	assert.Equal(t, walleterr.KindUserRejected, walleterr.KindOf(err))

	// 用户拒绝签名不进入错误槽, 历史保持不变
	snap := e.Snapshot()
	assert.Nil(t, snap.LastErr)
	assert.Empty(t, snap.Transactions)
	assert.False(t, snap.SendingTransaction)
}

func TestSendSubmitFailure(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stubErr("eth_sendTransaction", fmt.Errorf("nonce too low"))

	_, err := e.Send(context.Background(), validParams())
	require.Error(t, err)
	assert.Equal(t, walleterr.KindTransactionFailed, walleterr.KindOf(err))

	snap := e.Snapshot()
	require.NotNil(t, snap.LastErr)
	assert.Equal(t, walleterr.KindTransactionFailed, snap.LastErr.Kind)
	assert.Empty(t, snap.Transactions)
}

func TestSendSuccessAndConfirmation(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	// 前两次轮询尚未打包
	p.push("eth_getTransactionReceipt", "null")
	p.push("eth_getTransactionReceipt", "null")
	balanceCalls := p.callCount("eth_getBalance")

	hash, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, testTxHash, hash)

	snap := e.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, session.TxPending, snap.Transactions[0].Status)
	assert.Contains(t, snap.PendingHashes, hash)
	assert.False(t, snap.SendingTransaction)

	assert.Eventually(t, func() bool {
		s := e.Snapshot()
		return len(s.Transactions) == 1 && s.Transactions[0].Status == session.TxConfirmed
	}, 2*time.Second, 5*time.Millisecond, "交易必须结算到终态")

	e.Wait()
	snap = e.Snapshot()
	assert.Equal(t, uint64(21000), snap.Transactions[0].GasUsed)
	assert.Equal(t, uint64(100), snap.Transactions[0].BlockNumber)
	assert.Empty(t, snap.PendingHashes)
	// 确认后刷新一次余额 (提交前检查 + 确认后刷新)
	assert.Equal(t, balanceCalls+2, p.callCount("eth_getBalance"))
}

func TestSendGasOverrideSkipsEstimation(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)

	params := validParams()
	params.GasLimit = "30000"
	_, err := e.Send(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 0, p.callCount("eth_estimateGas"))
	e.Wait()
}

func TestSendGasEstimationFailure(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stubErr("eth_estimateGas", fmt.Errorf("execution reverted"))

	_, err := e.Send(context.Background(), validParams())
	require.Error(t, err)
	assert.Equal(t, walleterr.KindGasEstimationFailed, walleterr.KindOf(err))
	assert.Equal(t, 0, p.callCount("eth_sendTransaction"))
}

func TestReconcileRevertedTransaction(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stub("eth_getTransactionReceipt", `{"status":"0x0","gasUsed":"0x5208","blockNumber":"0x64"}`)

	_, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	e.Wait()

	snap := e.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, session.TxFailed, snap.Transactions[0].Status)
	assert.Empty(t, snap.PendingHashes)
}

func TestReconcilePollErrorSettlesFailed(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stubErr("eth_getTransactionReceipt", fmt.Errorf("endpoint unreachable"))

	_, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	e.Wait()

	snap := e.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, session.TxFailed, snap.Transactions[0].Status, "轮询失败的交易不得停留在 Pending")
}

func TestReconcileTimeoutSettlesFailed(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	// 永远不打包
	p.stub("eth_getTransactionReceipt", "null")

	_, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	e.Wait()

	snap := e.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, session.TxFailed, snap.Transactions[0].Status)
	assert.Zero(t, snap.Transactions[0].GasUsed)
	assert.Empty(t, snap.PendingHashes)
}

func TestSecondSendWhileFirstPending(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stub("eth_getTransactionReceipt", "null")
	second := "0x1111111111111111111111111111111111111111111111111111111111111111"
	p.push("eth_sendTransaction", fmt.Sprintf("%q", testTxHash))
	p.push("eth_sendTransaction", fmt.Sprintf("%q", second))

	h1, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	h2, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	// 最新提交排最前, 两笔各自独立挂起
	snap := e.Snapshot()
	require.Len(t, snap.Transactions, 2)
	assert.Equal(t, h2, snap.Transactions[0].Hash)
	assert.Equal(t, h1, snap.Transactions[1].Hash)
	assert.Len(t, snap.PendingHashes, 2)

	p.stub("eth_getTransactionReceipt", `{"status":"0x1","gasUsed":"0x5208","blockNumber":"0x64"}`)
	e.Wait()

	snap = e.Snapshot()
	assert.Equal(t, session.TxConfirmed, snap.Transactions[0].Status)
	assert.Equal(t, session.TxConfirmed, snap.Transactions[1].Status)
	assert.Empty(t, snap.PendingHashes)
}

// gatedProvider 在指定方法上阻塞, 模拟在途的 RPC 调用
type gatedProvider struct {
	*fakeProvider
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (g *gatedProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if method == "eth_sendTransaction" {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.fakeProvider.Request(ctx, method, params...)
}

func TestSendSessionReplacedDuringSubmission(t *testing.T) {
	inner := happyProvider()
	stubSendPipeline(inner)
	gated := &gatedProvider{
		fakeProvider: inner,
		release:      make(chan struct{}),
		entered:      make(chan struct{}),
	}
	src := &provider.StaticSource{
		Endpoints: []provider.Descriptor{{Name: "metamask", Preferred: true, Provider: gated}},
	}
	e := New(provider.NewRegistry(src, false), Options{
		ReceiptPollInterval: 5 * time.Millisecond,
		ReceiptTimeout:      300 * time.Millisecond,
	})
	require.NoError(t, e.Connect(context.Background()))
	e.Wait()

	done := make(chan error, 1)
	go func() {
		_, err := e.Send(context.Background(), validParams())
		done <- err
	}()

	// 等提交请求真正在途后替换会话
	<-gated.entered
	e.Disconnect()
	require.NoError(t, e.Connect(context.Background()))
	close(gated.release)

	err := <-done
	require.Error(t, err)
	assert.Equal(t, walleterr.KindNotConnected, walleterr.KindOf(err))

	e.Wait()
	snap := e.Snapshot()
	assert.Equal(t, session.StatusConnected, snap.Status)
	assert.Empty(t, snap.Transactions, "被替换会话的提交不得混入新会话")
	assert.Empty(t, snap.PendingHashes)
}

func TestDisconnectOrphansReconciliation(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)
	p.stub("eth_getTransactionReceipt", "null")

	_, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)

	e.Disconnect()
	// 对账任务结束后, 迟到的结果必须被丢弃
	p.stub("eth_getTransactionReceipt", `{"status":"0x1","gasUsed":"0x5208","blockNumber":"0x64"}`)
	e.Wait()

	snap := e.Snapshot()
	assert.Equal(t, session.StatusDisconnected, snap.Status)
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, snap.PendingHashes)
}

func TestEstimateGas(t *testing.T) {
	e, p := newConnectedEngine(t)
	stubSendPipeline(p)

	gas, err := e.EstimateGas(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
	// 预估不产生任何提交
	assert.Equal(t, 0, p.callCount("eth_sendTransaction"))
}

func TestGasPrice(t *testing.T) {
	e, p := newConnectedEngine(t)
	p.stub("eth_gasPrice", `"0x3b9aca00"`)

	price, err := e.GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000000000", price.String())
}

func TestLifecycleEventsPublished(t *testing.T) {
	p := happyProvider()
	stubSendPipeline(p)
	producer := &capturingProducer{}

	e := newEngineWithProducer(p, producer)
	require.NoError(t, e.Connect(context.Background()))
	e.Wait()

	hash, err := e.Send(context.Background(), validParams())
	require.NoError(t, err)
	e.Wait()

	require.Equal(t, 2, producer.count(), "提交与结算各发布一条事件")
	msgs := producer.all()
	for _, m := range msgs {
		assert.Equal(t, "wallet_events_tx", m.Topic)
		assert.Equal(t, hash, m.Key)
	}
	assert.Contains(t, string(msgs[0].Payload), `"status":"pending"`)
	assert.Contains(t, string(msgs[1].Payload), `"status":"confirmed"`)
	assert.Contains(t, string(msgs[1].Payload), `"gas_used":21000`)
}
