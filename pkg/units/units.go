package units

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/walleterr"
)

// EtherDecimals 是 ETH 的基础单位精度 (1 ETH = 10^18 Wei)。
const EtherDecimals = 18

// ToBaseUnits 将十进制金额字符串精确转换为基础单位整数。
// 转换必须无损: 小数位超过 decimals、负数或无法解析的输入返回 InvalidAmount,
// 绝不静默截断为零。
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInvalidAmount, "Invalid amount format", err)
	}
	if d.IsNegative() {
		return nil, walleterr.ErrInvalidAmount
	}

	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		// 小数位超过基础单位精度, 无法精确表示
		return nil, walleterr.ErrInvalidAmount
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits 将基础单位整数转换回十进制金额字符串, 精确无舍入。
func FromBaseUnits(base *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(base, -decimals).String()
}

// EtherToWei 是 ToBaseUnits 的 18 位精度快捷方式。
func EtherToWei(amount string) (*big.Int, error) {
	return ToBaseUnits(amount, EtherDecimals)
}

// WeiToEther 是 FromBaseUnits 的 18 位精度快捷方式。
func WeiToEther(wei *big.Int) string {
	return FromBaseUnits(wei, EtherDecimals)
}

// FormatBalance 将余额格式化为 4 位小数的展示形式, 解析失败返回 "0"。
// 仅用于展示, 不参与任何金额计算。
func FormatBalance(balance string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(balance))
	if err != nil {
		return "0"
	}
	return d.StringFixed(4)
}
