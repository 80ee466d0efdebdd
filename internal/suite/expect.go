package suite

import (
	"fmt"
	"math"
	"reflect"
)

// Expectation хранит результат одного expect(...).toX(...).
type Expectation struct {
	Matcher  string
	Expected any
	Actual   any
	Passed   bool
}

func (e Expectation) String() string {
	switch e.Matcher {
	case "toBe", "not.toBe":
		return fmt.Sprintf("expected %v %s %v", e.Actual, e.Matcher, e.Expected)
	}
	return fmt.Sprintf("expected %v %s", e.Actual, e.Matcher)
}

// Matcher проверяет одно значение. Неудача записывается, но выполнение
// проверки продолжается.
type Matcher struct {
	t      *T
	actual any
	negate bool
}

// Not инвертирует следующий матчер.
func (m *Matcher) Not() *Matcher {
	return &Matcher{t: m.t, actual: m.actual, negate: !m.negate}
}

// ToBe сравнивает значения на равенство.
func (m *Matcher) ToBe(expected any) bool {
	return m.record("toBe", expected, reflect.DeepEqual(m.actual, expected))
}

// ToBeDefined требует значение, отличное от nil (в том числе типизированного nil).
func (m *Matcher) ToBeDefined() bool {
	return m.record("toBeDefined", nil, !isNil(m.actual))
}

// ToBeTruthy: false, 0, "" и nil ложны, остальное истинно.
func (m *Matcher) ToBeTruthy() bool {
	return m.record("toBeTruthy", nil, truthy(m.actual))
}

func (m *Matcher) record(name string, expected any, ok bool) bool {
	if m.negate {
		name = "not." + name
		ok = !ok
	}
	m.t.expectations = append(m.t.expectations, Expectation{
		Matcher:  name,
		Expected: expected,
		Actual:   m.actual,
		Passed:   ok,
	})
	return ok
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func truthy(v any) bool {
	if isNil(v) {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}
