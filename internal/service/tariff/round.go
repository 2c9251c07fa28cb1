package tariff

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 四舍五入到两位小数（远离零方向）
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
