package model

// CountryCode COUNTRY_CODES 表中的一行
type CountryCode struct {
	Country string `json:"country"` // 显示名称
	Code    string `json:"code"`    // LAND 代码
}

// ZoneEntry Zonen 表中的一行：代码 + 每个 Tarif 对应的 Zone
type ZoneEntry struct {
	Code  string            `json:"code"`
	Zones map[string]string `json:"zones"` // tariff → zone
}

// WeightClassBand Gewichtsklassen 表中的一行，上下界均为闭区间
type WeightClassBand struct {
	Tariff string  `json:"tariff"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Class  string  `json:"class"`
}

// Contains 判断重量是否落在区间内
func (b WeightClassBand) Contains(weight float64) bool {
	return b.Lower <= weight && weight <= b.Upper
}

// SurchargeRate adds 表中的一行，Fraction 保留原始单元格内容
type SurchargeRate struct {
	Tariff   string `json:"tariff"`
	Fraction string `json:"fraction"`
}

// RateRow Frachtraten 表中的一行，Rates 保留原始单元格内容
type RateRow struct {
	Tariff string            `json:"tariff"`
	Class  string            `json:"class"`
	Rates  map[string]string `json:"rates"` // zone → rate
}

// TableSet 从工作簿读取的原始表数据（保持表内行顺序）
type TableSet struct {
	Countries  []CountryCode
	Zones      []ZoneEntry
	Tariffs    []string // Zonen 表中除 LAND 外的列
	Surcharges []SurchargeRate
	RateZones  []string // Frachtraten 表中除 TARIF/GK 外的列
	Rates      []RateRow
	Bands      []WeightClassBand
}

type rateKey struct {
	tariff string
	class  string
}

// Tables 只读参考表，加载后建立一次索引
// 所有索引均为“首行优先”：重复键只保留表中第一次出现的行
type Tables struct {
	TableSet

	countryIdx   map[string]int
	zoneIdx      map[string]int
	surchargeIdx map[string]int
	rateIdx      map[rateKey]int
	bandIdx      map[string][]int
	rateZoneSet  map[string]struct{}
}

// NewTables 基于原始表数据建立索引
func NewTables(set TableSet) *Tables {
	t := &Tables{
		TableSet:     set,
		countryIdx:   make(map[string]int, len(set.Countries)),
		zoneIdx:      make(map[string]int, len(set.Zones)),
		surchargeIdx: make(map[string]int, len(set.Surcharges)),
		rateIdx:      make(map[rateKey]int, len(set.Rates)),
		bandIdx:      make(map[string][]int),
		rateZoneSet:  make(map[string]struct{}, len(set.RateZones)),
	}

	for i, c := range set.Countries {
		if _, ok := t.countryIdx[c.Country]; !ok {
			t.countryIdx[c.Country] = i
		}
	}
	for i, z := range set.Zones {
		if _, ok := t.zoneIdx[z.Code]; !ok {
			t.zoneIdx[z.Code] = i
		}
	}
	for i, s := range set.Surcharges {
		if _, ok := t.surchargeIdx[s.Tariff]; !ok {
			t.surchargeIdx[s.Tariff] = i
		}
	}
	for i, r := range set.Rates {
		key := rateKey{tariff: r.Tariff, class: r.Class}
		if _, ok := t.rateIdx[key]; !ok {
			t.rateIdx[key] = i
		}
	}
	for i, b := range set.Bands {
		t.bandIdx[b.Tariff] = append(t.bandIdx[b.Tariff], i)
	}
	for _, z := range set.RateZones {
		t.rateZoneSet[z] = struct{}{}
	}

	return t
}

// CodeForCountry 国家名称 → LAND 代码
func (t *Tables) CodeForCountry(country string) (string, bool) {
	i, ok := t.countryIdx[country]
	if !ok {
		return "", false
	}
	return t.Countries[i].Code, true
}

// ZoneFor (代码, Tarif) → Zone；列不存在或单元格为空视为未找到
func (t *Tables) ZoneFor(code, tariff string) (string, bool) {
	i, ok := t.zoneIdx[code]
	if !ok {
		return "", false
	}
	zone, ok := t.Zones[i].Zones[tariff]
	if !ok || zone == "" {
		return "", false
	}
	return zone, true
}

// WeightClassFor (Tarif, 重量) → GK，按表内顺序取第一个命中的区间
func (t *Tables) WeightClassFor(tariff string, weight float64) (string, bool) {
	for _, i := range t.bandIdx[tariff] {
		if t.Bands[i].Contains(weight) {
			return t.Bands[i].Class, true
		}
	}
	return "", false
}

// HasRateZone Frachtraten 表是否包含该 Zone 列
func (t *Tables) HasRateZone(zone string) bool {
	_, ok := t.rateZoneSet[zone]
	return ok
}

// RateFor (Tarif, GK, Zone) → 原始运价单元格；行不存在或单元格为空视为未找到
func (t *Tables) RateFor(tariff, class, zone string) (string, bool) {
	i, ok := t.rateIdx[rateKey{tariff: tariff, class: class}]
	if !ok {
		return "", false
	}
	raw, ok := t.Rates[i].Rates[zone]
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// SurchargeFor Tarif → 原始燃油附加费单元格
func (t *Tables) SurchargeFor(tariff string) (string, bool) {
	i, ok := t.surchargeIdx[tariff]
	if !ok {
		return "", false
	}
	return t.Surcharges[i].Fraction, true
}

// CountryNames 按表内顺序返回国家名称（供下拉框使用）
func (t *Tables) CountryNames() []string {
	names := make([]string, 0, len(t.Countries))
	for _, c := range t.Countries {
		names = append(names, c.Country)
	}
	return names
}

// Options 返回表单可选项：国家按 COUNTRY_CODES 顺序，Tarif 按 Zonen 列顺序
func (t *Tables) Options() Options {
	tariffs := make([]string, len(t.Tariffs))
	copy(tariffs, t.Tariffs)
	return Options{
		Countries: t.CountryNames(),
		Tariffs:   tariffs,
	}
}
