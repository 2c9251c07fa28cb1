package tariff

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"frachtrechner/internal/model"
)

// ScalingThreshold 超过该重量（kg）时表内运价为单价，需要乘以重量
const ScalingThreshold = 20.0

// Result 单个运输段的费用明细
type Result struct {
	Code              string  `json:"code"`
	Zone              string  `json:"zone"`
	WeightClass       string  `json:"weightClass"`
	RawRate           float64 `json:"rawRate"`           // 表内运价
	SurchargeFraction float64 `json:"surchargeFraction"` // 燃油附加费比例
	Scaled            bool    `json:"scaled"`            // 是否按重量放大
	BaseRate          float64 `json:"baseRate"`
	Surcharge         float64 `json:"surcharge"`
	Total             float64 `json:"total"`
}

// Resolver 基于参考表的运费解析器，无副作用
type Resolver struct {
	tables *model.Tables
}

// NewResolver 创建解析器
func NewResolver(tables *model.Tables) *Resolver {
	return &Resolver{tables: tables}
}

// Resolve 依次查找 代码 → Zone → GK → 运价 → 附加费，返回该段费用
// 失败时返回 *LegError
func (r *Resolver) Resolve(leg model.Leg, in model.LegInput) (*Result, error) {
	if r.tables == nil {
		return nil, processingError(leg, "no tables loaded")
	}
	if math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return nil, processingError(leg, "invalid weight %v", in.Weight)
	}

	code, ok := r.tables.CodeForCountry(in.Country)
	if !ok {
		return nil, legError(leg, ErrCountryNotFound)
	}

	zone, ok := r.tables.ZoneFor(code, in.Tariff)
	if !ok {
		return nil, legError(leg, ErrZoneNotFound)
	}

	class, ok := r.tables.WeightClassFor(in.Tariff, in.Weight)
	if !ok {
		return nil, legError(leg, ErrWeightClassNotFound)
	}

	if !r.tables.HasRateZone(zone) {
		return nil, &LegError{Leg: leg, Kind: ErrZoneRateNotFound, Zone: zone}
	}
	rawRate, ok := r.tables.RateFor(in.Tariff, class, zone)
	if !ok {
		return nil, &LegError{Leg: leg, Kind: ErrZoneRateNotFound, Zone: zone}
	}
	rate, err := parseNumber(rawRate)
	if err != nil {
		return nil, processingError(leg, "rate for tariff %s class %s zone %s: %w", in.Tariff, class, zone, err)
	}

	fraction := 0.0
	if raw, ok := r.tables.SurchargeFor(in.Tariff); ok && strings.TrimSpace(raw) != "" {
		fraction, err = parseNumber(raw)
		if err != nil {
			return nil, processingError(leg, "fuel surcharge for tariff %s: %w", in.Tariff, err)
		}
	}

	base := rate
	scaled := in.Weight > ScalingThreshold
	if scaled {
		base = rate * in.Weight
	}
	surcharge := Round2(base * fraction)

	return &Result{
		Code:              code,
		Zone:              zone,
		WeightClass:       class,
		RawRate:           rate,
		SurchargeFraction: fraction,
		Scaled:            scaled,
		BaseRate:          Round2(base),
		Surcharge:         surcharge,
		Total:             Round2(base + surcharge),
	}, nil
}

// parseNumber 解析表格中的数值，兼容逗号小数点
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}
