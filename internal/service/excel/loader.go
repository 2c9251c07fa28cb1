package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"frachtrechner/internal/model"
)

// Load 从上传的 .xlsx 读取五张参考表
// 任一必需工作表或列缺失时返回 *FileError
func Load(r io.Reader) (*model.Tables, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fileError("", "failed to open excel: %w", err)
	}
	defer wb.Close()

	return LoadWorkbook(wb)
}

// LoadWorkbook 从已打开的工作簿读取参考表
func LoadWorkbook(wb *excelize.File) (*model.Tables, error) {
	if wb == nil {
		return nil, fileError("", "workbook is nil")
	}

	var missing []string
	for _, name := range model.RequiredSheets {
		if _, ok := resolveSheetName(wb, string(name)); !ok {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		return nil, &FileError{
			Sheet: missing[0],
			Err:   fmt.Errorf("missing sheets: %s", strings.Join(missing, ", ")),
		}
	}

	var set model.TableSet
	loaders := []func(*excelize.File, *model.TableSet) error{
		loadCountryCodes,
		loadZones,
		loadSurcharges,
		loadRates,
		loadWeightBands,
	}
	for _, load := range loaders {
		if err := load(wb, &set); err != nil {
			return nil, err
		}
	}

	return model.NewTables(set), nil
}

func loadCountryCodes(wb *excelize.File, set *model.TableSet) error {
	sd, err := readSheet(wb, string(model.SheetCountryCodes), model.ColCountry, model.ColLand)
	if err != nil {
		return err
	}

	for _, row := range sd.rows {
		country := sd.value(row, model.ColCountry)
		if country == "" {
			continue
		}
		set.Countries = append(set.Countries, model.CountryCode{
			Country: country,
			Code:    normalizeKey(sd.value(row, model.ColLand)),
		})
	}
	return nil
}

func loadZones(wb *excelize.File, set *model.TableSet) error {
	sd, err := readSheet(wb, string(model.SheetZones), model.ColLand)
	if err != nil {
		return err
	}

	set.Tariffs = sd.columnsExcept(model.ColLand)
	if len(set.Tariffs) == 0 {
		return fileError(sd.name, "no tariff columns")
	}

	for _, row := range sd.rows {
		code := normalizeKey(sd.value(row, model.ColLand))
		if code == "" {
			continue
		}
		zones := make(map[string]string, len(set.Tariffs))
		for _, tariff := range set.Tariffs {
			zones[tariff] = normalizeKey(sd.value(row, tariff))
		}
		set.Zones = append(set.Zones, model.ZoneEntry{Code: code, Zones: zones})
	}
	return nil
}

func loadSurcharges(wb *excelize.File, set *model.TableSet) error {
	sd, err := readSheet(wb, string(model.SheetAdds), model.ColTariff, model.ColFuelSurcharge)
	if err != nil {
		return err
	}

	for _, row := range sd.rows {
		tariff := normalizeKey(sd.value(row, model.ColTariff))
		if tariff == "" {
			continue
		}
		set.Surcharges = append(set.Surcharges, model.SurchargeRate{
			Tariff:   tariff,
			Fraction: sd.value(row, model.ColFuelSurcharge),
		})
	}
	return nil
}

func loadRates(wb *excelize.File, set *model.TableSet) error {
	sd, err := readSheet(wb, string(model.SheetRates), model.ColTariff, model.ColWeightClass)
	if err != nil {
		return err
	}

	set.RateZones = sd.columnsExcept(model.ColTariff, model.ColWeightClass)

	for _, row := range sd.rows {
		tariff := normalizeKey(sd.value(row, model.ColTariff))
		if tariff == "" {
			continue
		}
		rates := make(map[string]string, len(set.RateZones))
		for _, zone := range set.RateZones {
			rates[zone] = sd.value(row, zone)
		}
		set.Rates = append(set.Rates, model.RateRow{
			Tariff: tariff,
			Class:  normalizeKey(sd.value(row, model.ColWeightClass)),
			Rates:  rates,
		})
	}
	return nil
}

func loadWeightBands(wb *excelize.File, set *model.TableSet) error {
	sd, err := readSheet(wb, string(model.SheetWeightBands),
		model.ColTariff, model.ColLowerBound, model.ColUpperBound, model.ColWeightClass)
	if err != nil {
		return err
	}

	for _, row := range sd.rows {
		tariff := normalizeKey(sd.value(row, model.ColTariff))
		if tariff == "" {
			continue
		}
		lower, err := parseBound(sd.value(row, model.ColLowerBound))
		if err != nil {
			return fileError(sd.name, "row %d: invalid %s %q", row.num, model.ColLowerBound, sd.value(row, model.ColLowerBound))
		}
		upper, err := parseBound(sd.value(row, model.ColUpperBound))
		if err != nil {
			return fileError(sd.name, "row %d: invalid %s %q", row.num, model.ColUpperBound, sd.value(row, model.ColUpperBound))
		}
		set.Bands = append(set.Bands, model.WeightClassBand{
			Tariff: tariff,
			Lower:  lower,
			Upper:  upper,
			Class:  normalizeKey(sd.value(row, model.ColWeightClass)),
		})
	}
	return nil
}
