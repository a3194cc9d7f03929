// Package calendar decides which days are working days and converts between
// working-day durations and calendar dates.
package calendar

import (
	"fmt"
	"time"

	"github.com/joshharrison/siteloom/internal/schedule"
)

// DateLayout is the on-disk date format for activity dates.
const DateLayout = "2006-01-02"

// ScheduleType selects the allowed weekdays.
type ScheduleType string

const (
	MonFri ScheduleType = "mon_fri"
	MonSat ScheduleType = "mon_sat"
	MonSun ScheduleType = "mon_sun"
)

// scheduleDays maps every accepted schedule type to its weekday set. The
// half-day variants only select weekdays here; half days are not modelled.
var scheduleDays = map[ScheduleType][]time.Weekday{
	MonFri:                 {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	MonSat:                 {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"mon_sat_half":         {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"mon_sat_full":         {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	MonSun:                 {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"mon_sun_full":         {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"mon_sun_half_sun":     {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"mon_sun_full_sun":     {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	"mon_sun_half_sat_sun": {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
}

// Holiday is a user supplied non-working day. Date is YYYY-MM-DD, or MM-DD
// for a holiday that repeats every year.
type Holiday struct {
	Date      string `json:"date" yaml:"date" mapstructure:"date"`
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	Recurring bool   `json:"recurring,omitempty" yaml:"recurring,omitempty" mapstructure:"recurring"`
}

// Config is the work schedule configuration of a project.
type Config struct {
	ScheduleType            ScheduleType `json:"schedule_type" yaml:"schedule_type" mapstructure:"schedule_type"`
	ObserveNationalHolidays bool         `json:"observe_national_holidays" yaml:"observe_national_holidays" mapstructure:"observe_national_holidays"`
	ObserveRegionalHolidays bool         `json:"observe_regional_holidays" yaml:"observe_regional_holidays" mapstructure:"observe_regional_holidays"`
	City                    string       `json:"city,omitempty" yaml:"city,omitempty" mapstructure:"city"`
	Region                  string       `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`
	CustomHolidays          []Holiday    `json:"custom_holidays,omitempty" yaml:"custom_holidays,omitempty" mapstructure:"custom_holidays"`
}

// Validate checks the schedule type and custom holiday dates.
func (c Config) Validate() error {
	if c.ScheduleType != "" {
		if _, ok := scheduleDays[c.ScheduleType]; !ok {
			return fmt.Errorf("unknown schedule type %q", c.ScheduleType)
		}
	}
	for _, h := range c.CustomHolidays {
		if _, err := holidayKey(h); err != nil {
			return err
		}
	}
	return nil
}

// Calendar answers working-day questions for one Config.
type Calendar struct {
	cfg      Config
	weekdays [7]bool
	custom   map[string]string // YYYY-MM-DD or MM-DD -> name
}

// New builds a Calendar. An unknown or empty schedule type falls back to
// Monday to Friday; malformed custom holidays are skipped (see Validate).
func New(cfg Config) *Calendar {
	days, ok := scheduleDays[cfg.ScheduleType]
	if !ok {
		days = scheduleDays[MonFri]
	}
	c := &Calendar{cfg: cfg, custom: make(map[string]string)}
	for _, d := range days {
		c.weekdays[d] = true
	}
	for _, h := range cfg.CustomHolidays {
		if key, err := holidayKey(h); err == nil {
			c.custom[key] = h.Name
		}
	}
	return c
}

// Config returns the configuration the calendar was built from.
func (c *Calendar) Config() Config {
	return c.cfg
}

// IsWorkingDay reports whether date is a working day.
func (c *Calendar) IsWorkingDay(date time.Time) bool {
	if !c.weekdays[date.Weekday()] {
		return false
	}
	_, holiday := c.HolidayName(date)
	return !holiday
}

// HolidayName returns the name of the observed holiday falling on date.
func (c *Calendar) HolidayName(date time.Time) (string, bool) {
	md := date.Format("01-02")
	if name, ok := c.custom[date.Format(DateLayout)]; ok {
		return name, true
	}
	if name, ok := c.custom[md]; ok {
		return name, true
	}
	if c.cfg.ObserveNationalHolidays {
		if name, ok := nationalHolidays[md]; ok {
			return name, true
		}
	}
	if c.cfg.ObserveRegionalHolidays {
		if name, ok := cityHolidays[c.cfg.City][md]; ok {
			return name, true
		}
		if name, ok := regionHolidays[c.cfg.Region][md]; ok {
			return name, true
		}
	}
	return "", false
}

// AddWorkingDays returns the date on which an activity of durationDays
// working days ends when it starts on start. A duration of 1 ends on the
// first working day on or after start; durations <= 0 return start.
func (c *Calendar) AddWorkingDays(start time.Time, durationDays int) time.Time {
	if durationDays <= 0 {
		return start
	}
	cur := truncate(start)
	for !c.IsWorkingDay(cur) {
		cur = cur.AddDate(0, 0, 1)
	}
	for remaining := durationDays - 1; remaining > 0; {
		cur = cur.AddDate(0, 0, 1)
		if c.IsWorkingDay(cur) {
			remaining--
		}
	}
	return cur
}

// CountWorkingDays counts working days in [start, end]. It returns 0 when
// end is before start.
func (c *Calendar) CountWorkingDays(start, end time.Time) int {
	cur, last := truncate(start), truncate(end)
	if last.Before(cur) {
		return 0
	}
	count := 0
	for !cur.After(last) {
		if c.IsWorkingDay(cur) {
			count++
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return count
}

// ParseDate parses a YYYY-MM-DD date. Malformed input yields an
// *schedule.InvalidDateError.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &schedule.InvalidDateError{Value: s, Err: err}
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func holidayKey(h Holiday) (string, error) {
	if h.Recurring || len(h.Date) == len("01-02") {
		md := h.Date
		if len(md) == len(DateLayout) {
			md = md[5:]
		}
		if _, err := time.Parse("01-02", md); err != nil {
			return "", fmt.Errorf("custom holiday %q: %w", h.Name, &schedule.InvalidDateError{Field: "holiday", Value: h.Date, Err: err})
		}
		return md, nil
	}
	if _, err := ParseDate(h.Date); err != nil {
		return "", fmt.Errorf("custom holiday %q: %w", h.Name, err)
	}
	return h.Date, nil
}
