package engine

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/provider"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// txArg 是 eth_estimateGas / eth_sendTransaction 的调用参数
type txArg struct {
	From  string         `json:"from,omitempty"`
	To    string         `json:"to"`
	Value *hexutil.Big   `json:"value,omitempty"`
	Gas   hexutil.Uint64 `json:"gas,omitempty"`
}

// GasEstimator 从选定的端点推导待提交转账的 Gas 预算。
// 估算失败时返回 GasEstimationFailed 并保留底层原因,
// 绝不擅自替换为默认预算, 调用方可通过显式 gasLimit 覆盖。
type GasEstimator struct{}

// Estimate 委托端点执行 eth_estimateGas
func (GasEstimator) Estimate(ctx context.Context, p provider.Provider, from, to string, value *big.Int) (uint64, error) {
	raw, err := p.Request(ctx, "eth_estimateGas", txArg{
		From:  from,
		To:    to,
		Value: (*hexutil.Big)(value),
	})
	if err != nil {
		return 0, walleterr.Wrap(walleterr.KindGasEstimationFailed, "Gas estimation failed", err)
	}

	var gas hexutil.Uint64
	if err := json.Unmarshal(raw, &gas); err != nil {
		return 0, walleterr.Wrap(walleterr.KindGasEstimationFailed, "Gas estimation failed", err)
	}
	return uint64(gas), nil
}

// GasPrice 查询当前 Gas 价格 (Wei)
func (GasEstimator) GasPrice(ctx context.Context, p provider.Provider) (*big.Int, error) {
	raw, err := p.Request(ctx, "eth_gasPrice")
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindGasEstimationFailed, "Failed to get gas price", err)
	}

	var price hexutil.Big
	if err := json.Unmarshal(raw, &price); err != nil {
		return nil, walleterr.Wrap(walleterr.KindGasEstimationFailed, "Failed to get gas price", err)
	}
	return (*big.Int)(&price), nil
}
