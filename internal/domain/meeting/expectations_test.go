package meeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultExpectations_ForGrade(t *testing.T) {
	table := DefaultExpectations()

	exp := table.ForGrade("3")
	assert.Equal(t, 3.5, exp.GPAExcellent)
	assert.Equal(t, 3.0, exp.GPAGood)
	assert.Equal(t, 0.95, exp.AttendanceGood)

	exp = table.ForGrade("6")
	assert.Equal(t, 3.8, exp.GPAExcellent)
	assert.Equal(t, 3.3, exp.GPAGood)
	assert.Equal(t, 0.96, exp.AttendanceGood)
}

func TestExpectationTable_UnknownGradeFallsBack(t *testing.T) {
	table := DefaultExpectations()
	grade5 := table.ForGrade("5")

	assert.Equal(t, grade5, table.ForGrade("12"))
	assert.Equal(t, grade5, table.ForGrade("kindergarten"))
	assert.Equal(t, grade5, table.ForGrade(""))
}

func TestExpectationTable_Validate(t *testing.T) {
	assert.NoError(t, DefaultExpectations().Validate())

	noFallback := ExpectationTable{
		"3": {GPAExcellent: 3.5, GPAGood: 3.0, AttendanceGood: 0.95},
	}
	assert.ErrorIs(t, noFallback.Validate(), ErrInvalidExpectations)

	inverted := ExpectationTable{
		"5": {GPAExcellent: 3.0, GPAGood: 3.5, AttendanceGood: 0.95},
	}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidExpectations)
}
