package model

// SheetName 工作簿中必需的工作表名称
type SheetName string

const (
	SheetCountryCodes SheetName = "COUNTRY_CODES"   // 国家 → 代码
	SheetZones        SheetName = "Zonen"           // 代码 → 各 Tarif 的 Zone
	SheetAdds         SheetName = "adds"            // 燃油附加费
	SheetRates        SheetName = "Frachtraten"     // Tarif + GK → 各 Zone 运价
	SheetWeightBands  SheetName = "Gewichtsklassen" // Tarif 重量区间 → GK
)

// RequiredSheets 按加载顺序列出全部必需工作表
var RequiredSheets = []SheetName{
	SheetCountryCodes,
	SheetZones,
	SheetAdds,
	SheetRates,
	SheetWeightBands,
}

// 列名
const (
	ColCountry       = "COUNTRY"
	ColLand          = "LAND"
	ColTariff        = "TARIF"
	ColFuelSurcharge = "FUELSURCHARGE"
	ColWeightClass   = "GK"
	ColLowerBound    = "von"
	ColUpperBound    = "bis"
)
