package excel

import (
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetData 单个工作表：表头索引 + 数据行
type sheetData struct {
	name     string
	header   []string
	colIndex map[string]int
	rows     []sheetRow
}

type sheetRow struct {
	num   int // Excel 行号（从 1 开始）
	cells []string
}

// resolveSheetName 先精确匹配，再忽略大小写与首尾空格匹配
func resolveSheetName(wb *excelize.File, want string) (string, bool) {
	sheets := wb.GetSheetList()
	for _, name := range sheets {
		if name == want {
			return name, true
		}
	}
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			return name, true
		}
	}
	return "", false
}

// readSheet 读取工作表原始单元格值，跳过空行
func readSheet(wb *excelize.File, want string, required ...string) (*sheetData, error) {
	name, ok := resolveSheetName(wb, want)
	if !ok {
		return nil, fileError(want, "sheet not found")
	}

	rows, err := wb.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fileError(want, "failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fileError(want, "empty sheet")
	}

	sd := &sheetData{
		name:     want,
		colIndex: make(map[string]int),
	}
	for i, h := range rows[0] {
		h = normalizeKey(h)
		sd.header = append(sd.header, h)
		if h == "" {
			continue
		}
		if _, ok := sd.colIndex[h]; !ok {
			sd.colIndex[h] = i
		}
	}

	for _, col := range required {
		if _, ok := sd.colIndex[col]; !ok {
			return nil, fileError(want, "missing column %q", col)
		}
	}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		sd.rows = append(sd.rows, sheetRow{num: i + 2, cells: row})
	}

	return sd, nil
}

// value 取单元格内容（已去除首尾空格）
func (sd *sheetData) value(row sheetRow, col string) string {
	idx, ok := sd.colIndex[col]
	if !ok {
		return ""
	}
	return cellAt(row, idx)
}

// columnsExcept 返回表头中除指定列外的非空列，保持原顺序
func (sd *sheetData) columnsExcept(skip ...string) []string {
	cols := make([]string, 0, len(sd.header))
	for i, h := range sd.header {
		if h == "" || contains(skip, h) || sd.colIndex[h] != i {
			continue
		}
		cols = append(cols, h)
	}
	return cols
}

func cellAt(row sheetRow, idx int) string {
	if idx < 0 || idx >= len(row.cells) {
		return ""
	}
	return strings.TrimSpace(row.cells[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// normalizeKey 规范化用于匹配的单元格值：去除空格，整数浮点 "1.0" → "1"
// 保证同一个 Zone/GK 在不同工作表中以数字或文本存储时都能对上
func normalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// parseBound 解析重量区间边界，兼容逗号小数点
func parseBound(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}
