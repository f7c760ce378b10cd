// Package scenarios runs acceptance scenarios against a prediction server.
// A scenario is a YAML file listing inputs and the outcome each must
// produce, used to vet a new model artifact before it is deployed.
package scenarios

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gymcrowd/core/model"
)

type InputDef struct {
	Hour        int     `yaml:"hour"`
	Day         string  `yaml:"day"`
	Month       string  `yaml:"month"`
	Temperature float64 `yaml:"temperature"`
	Semester    string  `yaml:"semester"`
	Holiday     bool    `yaml:"holiday"`
}

func (d InputDef) ToModel() model.RawInput {
	return model.RawInput{
		Hour:           d.Hour,
		Day:            d.Day,
		Month:          d.Month,
		Temperature:    d.Temperature,
		SemesterStatus: d.Semester,
		IsHoliday:      d.Holiday,
	}
}

// Expected lists the checks applied to one case. Unset fields are not checked.
type Expected struct {
	Status   string `yaml:"status,omitempty"`
	Count    *int   `yaml:"count,omitempty"`
	MinCount *int   `yaml:"min_count,omitempty"`
	MaxCount *int   `yaml:"max_count,omitempty"`
	Degraded *bool  `yaml:"degraded,omitempty"`
	// InvalidField expects the input to be rejected for this field.
	InvalidField string `yaml:"invalid_field,omitempty"`
}

type Case struct {
	Name     string   `yaml:"name"`
	Input    InputDef `yaml:"input"`
	Expected Expected `yaml:"expected"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Model is the artifact the scenario was written for, relative to the
	// scenario file. Callers may ignore it and supply their own server.
	Model string `yaml:"model,omitempty"`
	Cases []Case `yaml:"cases"`
}

// Load reads and checks a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(sc.Cases) == 0 {
		return nil, errors.New(path + ": no cases")
	}
	for i, c := range sc.Cases {
		if c.Expected.Status != "" {
			if _, err := model.ParseStatus(c.Expected.Status); err != nil {
				return nil, fmt.Errorf("%s: case %d: %w", path, i, err)
			}
		}
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	if sc.Model != "" && !filepath.IsAbs(sc.Model) {
		sc.Model = filepath.Join(filepath.Dir(path), sc.Model)
	}
	return &sc, nil
}
