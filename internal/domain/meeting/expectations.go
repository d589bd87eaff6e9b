package meeting

import (
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE EXPECTATIONS (нормативы по классам)
// Пороговые значения, с которыми оценщики сравнивают показатели ученика.
// Таблицу можно переопределить через конфигурацию (см. WithExpectations).
// ══════════════════════════════════════════════════════════════════════════════

// fallbackGrade - класс, нормативы которого применяются, когда для класса
// ученика нет записи в таблице.
const fallbackGrade = "5"

// GradeExpectations содержит нормативы для одного класса.
type GradeExpectations struct {
	// GPAExcellent - порог отличной успеваемости.
	GPAExcellent float64

	// GPAGood - порог хорошей успеваемости.
	GPAGood float64

	// AttendanceGood - ожидаемая доля посещаемости.
	AttendanceGood float64
}

// ExpectationTable - нормативы по классам, ключ - номер класса строкой.
type ExpectationTable map[string]GradeExpectations

// DefaultExpectations возвращает встроенную таблицу нормативов.
func DefaultExpectations() ExpectationTable {
	return ExpectationTable{
		"3": {GPAExcellent: 3.5, GPAGood: 3.0, AttendanceGood: 0.95},
		"4": {GPAExcellent: 3.6, GPAGood: 3.1, AttendanceGood: 0.95},
		"5": {GPAExcellent: 3.7, GPAGood: 3.2, AttendanceGood: 0.96},
		"6": {GPAExcellent: 3.8, GPAGood: 3.3, AttendanceGood: 0.96},
	}
}

// ForGrade возвращает нормативы для класса. Для неизвестного класса
// возвращаются нормативы пятого класса.
func (t ExpectationTable) ForGrade(grade string) GradeExpectations {
	if exp, ok := t[grade]; ok {
		return exp
	}
	return t[fallbackGrade]
}

// ErrInvalidExpectations возвращается при несогласованной таблице нормативов.
var ErrInvalidExpectations = errors.New("invalid expectation table")

// Validate проверяет согласованность таблицы: запасной класс должен
// присутствовать, а порог "отлично" не может быть ниже порога "хорошо".
func (t ExpectationTable) Validate() error {
	if _, ok := t[fallbackGrade]; !ok {
		return fmt.Errorf("%w: no entry for fallback grade %q", ErrInvalidExpectations, fallbackGrade)
	}
	for grade, exp := range t {
		if exp.GPAExcellent < exp.GPAGood {
			return fmt.Errorf("%w: grade %s has gpa_excellent below gpa_good", ErrInvalidExpectations, grade)
		}
	}
	return nil
}
