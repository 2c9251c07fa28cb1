package tariff

import (
	"errors"

	"frachtrechner/internal/model"
)

// JobCost 两段都成功时的合计与 Job 分摊费用
type JobCost struct {
	CombinedTotal     float64 `json:"combinedTotal"`     // 进口 + 出口
	ApportionedImport float64 `json:"apportionedImport"` // 按出口/进口重量比例分摊的进口费用
	ExportTotal       float64 `json:"exportTotal"`
	JobCost           float64 `json:"jobCost"`
}

// Aggregate 合并进口、出口两段的结果
// 只有当前 Job 对应的那部分进口货物计入 Job 成本
func Aggregate(imp, exp *Result, importWeight, exportWeight float64) (*JobCost, error) {
	if imp == nil || exp == nil {
		return nil, errors.New("both legs are required")
	}
	if !(importWeight > 0) {
		return nil, errors.New("import weight must be greater than 0")
	}

	apportioned := Round2((exportWeight / importWeight) * imp.Total)
	return &JobCost{
		CombinedTotal:     Round2(imp.Total + exp.Total),
		ApportionedImport: apportioned,
		ExportTotal:       exp.Total,
		JobCost:           Round2(apportioned + exp.Total),
	}, nil
}

// LegOutcome 单段的输入与结果（Result 与 Err 二选一）
type LegOutcome struct {
	Leg    model.Leg      `json:"leg"`
	Input  model.LegInput `json:"input"`
	Result *Result        `json:"result,omitempty"`
	Err    error          `json:"-"`
	Error  string         `json:"error,omitempty"`
}

// OK 该段是否计算成功
func (o LegOutcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// Calculation 一次完整计算：两段独立解析，都成功时附带 Job 费用
type Calculation struct {
	Import LegOutcome `json:"import"`
	Export LegOutcome `json:"export"`
	Job    *JobCost   `json:"job,omitempty"`
}

// Calculate 分别解析进口段与出口段，一段失败不影响另一段
func (r *Resolver) Calculate(imp, exp model.LegInput) *Calculation {
	calc := &Calculation{
		Import: r.outcome(model.LegImport, imp),
		Export: r.outcome(model.LegExport, exp),
	}
	if calc.Import.OK() && calc.Export.OK() {
		if job, err := Aggregate(calc.Import.Result, calc.Export.Result, imp.Weight, exp.Weight); err == nil {
			calc.Job = job
		}
	}
	return calc
}

func (r *Resolver) outcome(leg model.Leg, in model.LegInput) LegOutcome {
	out := LegOutcome{Leg: leg, Input: in}
	res, err := r.Resolve(leg, in)
	if err != nil {
		out.Err = err
		out.Error = err.Error()
		return out
	}
	out.Result = res
	return out
}
