package model

import "strconv"

// CellKind вид значения ячейки таблицы
type CellKind int

const (
	CellText CellKind = iota
	CellNumber
)

// CellValue значение ячейки: либо число, либо текст
type CellValue struct {
	Kind   CellKind `json:"kind"`
	Number float64  `json:"number,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Grid таблица: упорядоченные строки из упорядоченных ячеек
type Grid [][]CellValue

// NumberCell создаёт числовое значение
func NumberCell(n float64) CellValue {
	return CellValue{Kind: CellNumber, Number: n}
}

// TextCell создаёт текстовое значение
func TextCell(s string) CellValue {
	return CellValue{Kind: CellText, Text: s}
}

// String строковое представление значения
func (v CellValue) String() string {
	if v.Kind == CellNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// IsEmpty сообщает, пустая ли ячейка
func (v CellValue) IsEmpty() bool {
	return v.Kind == CellText && v.Text == ""
}

// Cell возвращает значение ячейки по индексам строки и столбца;
// за пределами таблицы — пустая ячейка
func (g Grid) Cell(row, col int) CellValue {
	if row < 0 || row >= len(g) {
		return CellValue{}
	}
	if col < 0 || col >= len(g[row]) {
		return CellValue{}
	}
	return g[row][col]
}
