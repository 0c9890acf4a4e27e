package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"workspace-server/internal/model"
)

func testGrid() model.Grid {
	return model.Grid{
		{model.NumberCell(1), model.TextCell("hello"), model.TextCell("")},
		{model.NumberCell(2), model.TextCell("world"), model.NumberCell(10)},
		{model.NumberCell(3), model.TextCell("=SUM(A1:A2)"), model.NumberCell(20)},
	}
}

func TestEvaluate_LiteralPassthrough(t *testing.T) {
	e := New()

	assert.Equal(t, model.TextCell("hello"), e.Evaluate("hello", testGrid()))
	assert.Equal(t, model.TextCell("42"), e.Evaluate("42", testGrid()))
}

func TestEvaluate_Aggregates(t *testing.T) {
	e := New()
	grid := testGrid()

	cases := []struct {
		formula string
		want    float64
	}{
		{"=SUM(A1:A3)", 6},
		{"=SUM(A1,A2,A3)", 6},
		{"=SUM(A1:A3,100)", 106},
		{"=AVERAGE(A1:A3)", 2},
		{"=AVG(A1:A3)", 2},
		{"=MIN(A1:A3)", 1},
		{"=MAX(A1:A3)", 3},
		{"=MAX(C1:C3)", 20},
		{"=COUNT(A1:B3)", 6},
	}

	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			got := e.Evaluate(tc.formula, grid)
			assert.Equal(t, model.CellNumber, got.Kind)
			assert.InDelta(t, tc.want, got.Number, 1e-9)
		})
	}
}

func TestEvaluate_NonNumericFilteredFromAggregates(t *testing.T) {
	e := New()

	// Текстовые ячейки столбца B отбрасываются, а не дают ошибку
	got := e.Evaluate("=SUM(A1:B3)", testGrid())
	assert.InDelta(t, 6.0, got.Number, 1e-9)
}

func TestEvaluate_If(t *testing.T) {
	e := New()
	grid := model.Grid{{model.NumberCell(0), model.NumberCell(5)}}

	assert.Equal(t, "no", e.Evaluate(`=IF(A1,"yes","no")`, grid).Text)
	assert.Equal(t, "yes", e.Evaluate(`=IF(B1,"yes","no")`, grid).Text)
	assert.Equal(t, ErrValue, e.Evaluate(`=IF(A1,"yes")`, grid).Text)

	// Текстовое "false" в любом регистре — ложь
	assert.Equal(t, "no", e.Evaluate(`=IF("false","yes","no")`, grid).Text)
	assert.Equal(t, "no", e.Evaluate(`=IF("FALSE","yes","no")`, grid).Text)
}

func TestEvaluate_TextFunctions(t *testing.T) {
	e := New()
	grid := testGrid()

	assert.Equal(t, "HELLO", e.Evaluate("=UPPER(B1)", grid).Text)
	assert.Equal(t, "hello", e.Evaluate("=LOWER(B1)", grid).Text)
	assert.Equal(t, "helloworld", e.Evaluate("=CONCAT(B1,B2)", grid).Text)
	assert.Equal(t, `a,b`, e.Evaluate(`=CONCAT("a,b")`, grid).Text)

	got := e.Evaluate("=LEN(B1)", grid)
	assert.InDelta(t, 5.0, got.Number, 1e-9)
}

func TestEvaluate_Round(t *testing.T) {
	e := New()

	got := e.Evaluate("=ROUND(3.14159,2)", nil)
	assert.InDelta(t, 3.14, got.Number, 1e-9)

	got = e.Evaluate("=ROUND(2.5)", nil)
	assert.InDelta(t, 3.0, got.Number, 1e-9)
}

func TestEvaluate_ErrorTokens(t *testing.T) {
	e := New()

	assert.Equal(t, ErrName, e.Evaluate("=FOOBAR(A1)", testGrid()).Text)
	assert.Equal(t, ErrName, e.Evaluate("=UPPER(concat)", testGrid()).Text)
	assert.Equal(t, ErrError, e.Evaluate("=", testGrid()).Text)
	assert.Equal(t, ErrError, e.Evaluate("=???", testGrid()).Text)
	assert.Equal(t, ErrError, e.Evaluate(`=SUM("unterminated)`, testGrid()).Text)
}

func TestEvaluate_BareRefAndRange(t *testing.T) {
	e := New()
	grid := testGrid()

	assert.Equal(t, model.NumberCell(2), e.Evaluate("=A2", grid))
	assert.Equal(t, "1, 2, 3", e.Evaluate("=A1:A3", grid).Text)
}

func TestEvaluate_BlanksExcludedFromRange(t *testing.T) {
	e := New()

	// C1 пустая: не попадает ни в COUNT, ни в список значений
	got := e.Evaluate("=COUNT(C1:C3)", testGrid())
	assert.InDelta(t, 2.0, got.Number, 1e-9)
}

func TestEvaluate_NestedFormulaNotResolved(t *testing.T) {
	e := New()
	grid := testGrid()

	// B3 содержит формулу: её сырое значение — текст, в сумме отбрасывается
	got := e.Evaluate("=SUM(B3,C3)", grid)
	assert.InDelta(t, 20.0, got.Number, 1e-9)
}

func TestColumnConversion(t *testing.T) {
	assert.Equal(t, "A", IndexToColumn(0))
	assert.Equal(t, "Z", IndexToColumn(25))
	assert.Equal(t, "AA", IndexToColumn(26))
	assert.Equal(t, "AZ", IndexToColumn(51))
	assert.Equal(t, "BA", IndexToColumn(52))

	// Обратимость до трёхбуквенных столбцов включительно
	for i := 0; i < 26*26*26; i += 7 {
		letters := IndexToColumn(i)
		back, ok := ColumnToIndex(letters)
		assert.True(t, ok)
		assert.Equal(t, i, back, "column %s", letters)
	}
}

func TestParseRef(t *testing.T) {
	row, col, ok := ParseRef("AA1")
	assert.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, 26, col)

	row, col, ok = ParseRef("B12")
	assert.True(t, ok)
	assert.Equal(t, 11, row)
	assert.Equal(t, 1, col)

	_, _, ok = ParseRef("1A")
	assert.False(t, ok)
}
