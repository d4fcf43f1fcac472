package engine

import "github.com/shopspring/decimal"

// PriceSource 是资产估值的外部查询接口。
// 投资组合估值 = Σ 余额 × Price(资产)。
type PriceSource interface {
	// Price 返回资产的单价, 未知资产返回 0
	Price(asset string) decimal.Decimal
}

// FixedPriceSource 是固定价格表实现。
// 真实价格源 (行情 API) 接入之前的默认实现, 可整体替换。
type FixedPriceSource struct {
	prices map[string]decimal.Decimal
}

// NewFixedPriceSource 从字符串价格表构造, 无法解析的条目按 0 处理
func NewFixedPriceSource(prices map[string]string) *FixedPriceSource {
	parsed := make(map[string]decimal.Decimal, len(prices))
	for asset, raw := range prices {
		if d, err := decimal.NewFromString(raw); err == nil {
			parsed[asset] = d
		}
	}
	return &FixedPriceSource{prices: parsed}
}

func (s *FixedPriceSource) Price(asset string) decimal.Decimal {
	return s.prices[asset]
}

// defaultPriceSource 对应上线前的占位报价: ETH 固定 2000, LOT 尚未定价
func defaultPriceSource() *FixedPriceSource {
	return NewFixedPriceSource(map[string]string{
		"ETH": "2000",
		"LOT": "0",
	})
}
