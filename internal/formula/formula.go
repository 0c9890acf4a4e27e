// Package formula вычисляет табличные формулы вида =FUNC(arg1, arg2, ...)
// над снимком таблицы. Движок без состояния: каждое вычисление читает
// только переданную таблицу.
package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"workspace-server/internal/model"
)

// Токены ошибок. Движок никогда не паникует и не возвращает error:
// плохая формула даёт токен внутри значения, чтобы не ронять
// вычисление остальной таблицы.
const (
	ErrName  = "#NAME?"
	ErrError = "#ERROR!"
	ErrValue = "#VALUE!"
)

var (
	refRe   = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)
	rangeRe = regexp.MustCompile(`^([A-Z]+[0-9]+):([A-Z]+[0-9]+)$`)
	funcRe  = regexp.MustCompile(`^([A-Za-z]+)\((.*)\)$`)

	knownFuncs = map[string]bool{
		"SUM": true, "AVERAGE": true, "AVG": true, "COUNT": true,
		"MIN": true, "MAX": true, "IF": true, "CONCAT": true,
		"UPPER": true, "LOWER": true, "LEN": true, "ROUND": true,
	}
)

// Engine вычислитель формул. Значение без состояния, создаётся вызывающим
// кодом и передаётся по значению.
type Engine struct{}

// New создаёт вычислитель
func New() Engine {
	return Engine{}
}

// Evaluate вычисляет формулу ячейки над таблицей. Строка без ведущего "="
// возвращается как есть. Формула, ссылающаяся на ячейку с формулой,
// видит её сырое хранимое значение — вложенные формулы не раскрываются.
func (e Engine) Evaluate(raw string, grid model.Grid) model.CellValue {
	if !strings.HasPrefix(raw, "=") {
		return model.TextCell(raw)
	}

	expr := strings.TrimSpace(raw[1:])
	if expr == "" {
		return model.TextCell(ErrError)
	}

	// Вызов функции
	if m := funcRe.FindStringSubmatch(expr); m != nil {
		return e.call(strings.ToUpper(m[1]), m[2], grid)
	}

	// Голый диапазон: список значений, склеенный через запятую
	if rangeRe.MatchString(expr) {
		values, ok := e.rangeValues(expr, grid)
		if !ok {
			return model.TextCell(ErrError)
		}
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, v.String())
		}
		return model.TextCell(strings.Join(parts, ", "))
	}

	// Голая ссылка на ячейку
	if refRe.MatchString(expr) {
		row, col, ok := ParseRef(expr)
		if !ok {
			return model.TextCell(ErrError)
		}
		return grid.Cell(row, col)
	}

	if n, err := strconv.ParseFloat(expr, 64); err == nil {
		return model.NumberCell(n)
	}

	return model.TextCell(ErrError)
}

// call вычисляет вызов функции по имени
func (e Engine) call(name, rawArgs string, grid model.Grid) model.CellValue {
	args, ok := splitArgs(rawArgs)
	if !ok {
		return model.TextCell(ErrError)
	}

	switch name {
	case "SUM":
		return model.NumberCell(sum(e.numbers(args, grid)))
	case "AVERAGE", "AVG":
		nums := e.numbers(args, grid)
		if len(nums) == 0 {
			return model.NumberCell(0)
		}
		return model.NumberCell(sum(nums) / float64(len(nums)))
	case "COUNT":
		count := 0
		for _, v := range e.flatten(args, grid) {
			if !v.IsEmpty() {
				count++
			}
		}
		return model.NumberCell(float64(count))
	case "MIN":
		nums := e.numbers(args, grid)
		if len(nums) == 0 {
			return model.NumberCell(0)
		}
		min := nums[0]
		for _, n := range nums[1:] {
			if n < min {
				min = n
			}
		}
		return model.NumberCell(min)
	case "MAX":
		nums := e.numbers(args, grid)
		if len(nums) == 0 {
			return model.NumberCell(0)
		}
		max := nums[0]
		for _, n := range nums[1:] {
			if n > max {
				max = n
			}
		}
		return model.NumberCell(max)
	case "IF":
		if len(args) < 3 {
			return model.TextCell(ErrValue)
		}
		if truthy(e.argValue(args[0], grid)) {
			return e.argValue(args[1], grid)
		}
		return e.argValue(args[2], grid)
	case "CONCAT":
		var b strings.Builder
		for _, v := range e.flatten(args, grid) {
			b.WriteString(v.String())
		}
		return model.TextCell(b.String())
	case "UPPER":
		if len(args) == 0 {
			return model.TextCell(ErrError)
		}
		return model.TextCell(strings.ToUpper(e.argValue(args[0], grid).String()))
	case "LOWER":
		if len(args) == 0 {
			return model.TextCell(ErrError)
		}
		return model.TextCell(strings.ToLower(e.argValue(args[0], grid).String()))
	case "LEN":
		if len(args) == 0 {
			return model.TextCell(ErrError)
		}
		return model.NumberCell(float64(len([]rune(e.argValue(args[0], grid).String()))))
	case "ROUND":
		if len(args) == 0 {
			return model.TextCell(ErrError)
		}
		n, ok := toNumber(e.argValue(args[0], grid))
		if !ok {
			return model.TextCell(ErrValue)
		}
		decimals := 0.0
		if len(args) > 1 {
			if d, ok := toNumber(e.argValue(args[1], grid)); ok {
				decimals = d
			}
		}
		p := math.Pow(10, decimals)
		return model.NumberCell(math.Round(n*p) / p)
	default:
		return model.TextCell(ErrName)
	}
}

// argValue вычисляет один аргумент: ссылка, число или строковый литерал.
// Диапазон в скалярном контексте даёт своё первое значение.
func (e Engine) argValue(arg string, grid model.Grid) model.CellValue {
	values := e.expand(arg, grid)
	if len(values) == 0 {
		return model.CellValue{}
	}
	return values[0]
}

// expand разворачивает аргумент в список значений
func (e Engine) expand(arg string, grid model.Grid) []model.CellValue {
	arg = strings.TrimSpace(arg)

	if rangeRe.MatchString(arg) {
		values, ok := e.rangeValues(arg, grid)
		if !ok {
			return nil
		}
		return values
	}

	if refRe.MatchString(arg) {
		row, col, ok := ParseRef(arg)
		if !ok {
			return nil
		}
		return []model.CellValue{grid.Cell(row, col)}
	}

	if n, err := strconv.ParseFloat(arg, 64); err == nil {
		return []model.CellValue{model.NumberCell(n)}
	}

	// Строковый литерал, в кавычках или без
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		return []model.CellValue{model.TextCell(arg[1 : len(arg)-1])}
	}

	// Имя функции без скобок — ошибка имени, а не литерал
	if knownFuncs[strings.ToUpper(arg)] {
		return []model.CellValue{model.TextCell(ErrName)}
	}
	return []model.CellValue{model.TextCell(arg)}
}

// flatten разворачивает все аргументы в один список значений
func (e Engine) flatten(args []string, grid model.Grid) []model.CellValue {
	var values []model.CellValue
	for _, arg := range args {
		values = append(values, e.expand(arg, grid)...)
	}
	return values
}

// numbers собирает числа из аргументов; нечисловые значения отбрасываются
func (e Engine) numbers(args []string, grid model.Grid) []float64 {
	var nums []float64
	for _, v := range e.flatten(args, grid) {
		if n, ok := toNumber(v); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

// rangeValues значения прямоугольного диапазона, по строкам, без пустых ячеек
func (e Engine) rangeValues(expr string, grid model.Grid) ([]model.CellValue, bool) {
	m := rangeRe.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}

	r1, c1, ok1 := ParseRef(m[1])
	r2, c2, ok2 := ParseRef(m[2])
	if !ok1 || !ok2 {
		return nil, false
	}
	if r2 < r1 || c2 < c1 {
		return nil, false
	}

	values := make([]model.CellValue, 0, (r2-r1+1)*(c2-c1+1))
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			v := grid.Cell(row, col)
			if v.IsEmpty() {
				continue
			}
			values = append(values, v)
		}
	}
	return values, true
}

// splitArgs делит список аргументов по запятым верхнего уровня,
// не разрывая строковые литералы в кавычках
func splitArgs(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range raw {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, false
	}
	args = append(args, strings.TrimSpace(current.String()))
	return args, true
}

// sum сумма списка чисел
func sum(nums []float64) float64 {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total
}

// toNumber приводит значение к числу; текст парсится как float
func toNumber(v model.CellValue) (float64, bool) {
	if v.Kind == model.CellNumber {
		return v.Number, true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// truthy правила ложности: ноль, пустая строка и "false" — ложь
func truthy(v model.CellValue) bool {
	if v.Kind == model.CellNumber {
		return v.Number != 0
	}
	text := strings.TrimSpace(v.Text)
	return text != "" && !strings.EqualFold(text, "false")
}

// ColumnToIndex преобразует буквы столбца в индекс с нуля: A=0, Z=25, AA=26
func ColumnToIndex(letters string) (int, bool) {
	if letters == "" {
		return 0, false
	}
	index := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		index = index*26 + int(r-'A') + 1
	}
	return index - 1, true
}

// IndexToColumn преобразует индекс с нуля в буквы столбца: 0=A, 25=Z, 26=AA
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}
	var letters []byte
	index++
	for index > 0 {
		index--
		letters = append([]byte{byte('A' + index%26)}, letters...)
		index /= 26
	}
	return string(letters)
}

// ParseRef разбирает ссылку вида "B12" в индексы строки и столбца с нуля
func ParseRef(ref string) (row, col int, ok bool) {
	m := refRe.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, false
	}
	col, ok = ColumnToIndex(m[1])
	if !ok {
		return 0, 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return n - 1, col, true
}
