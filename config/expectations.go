package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
)

// expectationsFile mirrors the YAML layout of the expectations override file.
// Grades are string keys so "3".."6" (and any future grades) work unchanged.
//
// Example:
//
//	grades:
//	  "3":
//	    gpa_excellent: 3.5
//	    gpa_good: 3.0
//	    attendance_good: 0.95
type expectationsFile struct {
	Grades map[string]gradeExpectationsYAML `yaml:"grades"`
}

type gradeExpectationsYAML struct {
	GPAExcellent   float64 `yaml:"gpa_excellent"`
	GPAGood        float64 `yaml:"gpa_good"`
	AttendanceGood float64 `yaml:"attendance_good"`
}

// LoadExpectations builds the expectation table used by the briefing generator.
// With an empty path the built-in defaults are returned. A configured file
// overrides entries per grade; grades missing from the file keep their
// defaults, so a partial override file is fine.
func LoadExpectations(path string) (meeting.ExpectationTable, error) {
	table := meeting.DefaultExpectations()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read expectations file %s: %w", path, err)
	}

	var file expectationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse expectations file %s: %w", path, err)
	}

	for grade, exp := range file.Grades {
		table[grade] = meeting.GradeExpectations{
			GPAExcellent:   exp.GPAExcellent,
			GPAGood:        exp.GPAGood,
			AttendanceGood: exp.AttendanceGood,
		}
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("expectations file %s: %w", path, err)
	}

	return table, nil
}
