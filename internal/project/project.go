// Package project reads and writes siteloom project files. A project file
// is YAML (or JSON, which YAML accepts) holding the activity list, the work
// calendar, the budget and the EVM measurement series.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/evm"
	"github.com/joshharrison/siteloom/internal/schedule"
)

// Measurement is one recorded EVM period.
type Measurement struct {
	Date           string  `json:"date" yaml:"date"`
	PlannedPercent float64 `json:"planned_percent" yaml:"planned_percent"`
	ActualPercent  float64 `json:"actual_percent" yaml:"actual_percent"`
	ActualCost     float64 `json:"actual_cost" yaml:"actual_cost"`
}

// Project is the on-disk document.
type Project struct {
	Name         string              `json:"name" yaml:"name"`
	StartDate    string              `json:"start_date" yaml:"start_date"`
	BAC          float64             `json:"bac" yaml:"bac"`
	Calendar     calendar.Config     `json:"calendar" yaml:"calendar"`
	Activities   []schedule.Activity `json:"activities" yaml:"activities"`
	Measurements []Measurement       `json:"measurements,omitempty" yaml:"measurements,omitempty"`
}

// Load reads a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return Decode(data)
}

// Decode parses a project document.
func Decode(data []byte) (*Project, error) {
	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the project, as JSON when path ends in .json and YAML
// otherwise. The file is replaced atomically.
func Save(path string, p *Project) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(p, "", "  ")
	} else {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(p)
		if err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return os.Rename(tmp, path)
}

// Validate checks the project level fields. Activity level problems are
// left to the engines, which report them with typed errors.
func (p *Project) Validate() error {
	if p.StartDate != "" {
		if _, err := calendar.ParseDate(p.StartDate); err != nil {
			return fmt.Errorf("start_date: %w", err)
		}
	}
	if p.BAC < 0 {
		return fmt.Errorf("bac must not be negative, got %v", p.BAC)
	}
	if err := p.Calendar.Validate(); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	for i, m := range p.Measurements {
		if _, err := calendar.ParseDate(m.Date); err != nil {
			return fmt.Errorf("measurement %d: %w", i, err)
		}
	}
	return nil
}

// Start returns the project start date.
func (p *Project) Start() (time.Time, error) {
	if p.StartDate == "" {
		return time.Time{}, fmt.Errorf("project %q has no start_date", p.Name)
	}
	return calendar.ParseDate(p.StartDate)
}

// WorkCalendar builds the project's working calendar.
func (p *Project) WorkCalendar() *calendar.Calendar {
	return calendar.New(p.Calendar)
}

// EVM replays the measurement series into a fresh engine.
func (p *Project) EVM() (*evm.Engine, error) {
	e := evm.New(p.BAC)
	for i, m := range p.Measurements {
		d, err := calendar.ParseDate(m.Date)
		if err != nil {
			return nil, fmt.Errorf("measurement %d: %w", i, err)
		}
		if _, err := e.AddMeasurement(d, m.PlannedPercent, m.ActualPercent, m.ActualCost); err != nil {
			return nil, fmt.Errorf("measurement %d: %w", i, err)
		}
	}
	return e, nil
}

// Activity returns a pointer to the activity with the given id.
func (p *Project) Activity(id string) (*schedule.Activity, error) {
	for i := range p.Activities {
		if p.Activities[i].ID == id {
			return &p.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("activity %s: %w", id, schedule.ErrActivityNotFound)
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	c := *p
	c.Activities = schedule.CloneAll(p.Activities)
	c.Measurements = append([]Measurement(nil), p.Measurements...)
	c.Calendar.CustomHolidays = append([]calendar.Holiday(nil), p.Calendar.CustomHolidays...)
	return &c
}
