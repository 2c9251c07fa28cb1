package model

// Leg 运输段
type Leg string

const (
	LegImport Leg = "Import"
	LegExport Leg = "Export"
)

// LegInput 单个运输段的用户输入
type LegInput struct {
	Country string  `json:"country"`
	Tariff  string  `json:"tariff"`
	Weight  float64 `json:"weight"` // kg，必须大于 0
}

// Options 表单下拉框的可选项
type Options struct {
	Countries []string `json:"countries"`
	Tariffs   []string `json:"tariffs"`
}
