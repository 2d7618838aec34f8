package booking

import (
	"errors"
	"fmt"
	"time"
)

const day = 24 * time.Hour

// DateRange is a half-open calendar date range [start, end). Both bounds are
// UTC midnights; time-of-day never enters pricing or overlap checks.
type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	start = TruncateToDate(start)
	end = TruncateToDate(end)
	if !end.After(start) {
		return DateRange{}, errors.New("end date must be after start date")
	}
	return DateRange{start: start, end: end}, nil
}

func TruncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r DateRange) Start() time.Time {
	return r.start
}

func (r DateRange) End() time.Time {
	return r.end
}

// Days is the billable day count: one per night between start and end.
func (r DateRange) Days() int {
	return int(r.end.Sub(r.start) / day)
}

func (r DateRange) ExtendedBy(days int) (DateRange, error) {
	if days <= 0 {
		return DateRange{}, errors.New("extension must be at least one day")
	}
	return DateRange{start: r.start, end: r.end.AddDate(0, 0, days)}, nil
}

func (r DateRange) Overlaps(other DateRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

func (r DateRange) StartsBefore(t time.Time) bool {
	return r.start.Before(TruncateToDate(t))
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s,%s)", r.start.Format(time.DateOnly), r.end.Format(time.DateOnly))
}

// Money is an exact amount in paise. Arithmetic stays in integers; rupee
// conversion exists for display only.
type Money struct {
	paise int64
}

func NewMoney(paise int64) Money {
	return Money{paise: paise}
}

func NewMoneyFromPaise(paise int64) (Money, error) {
	if paise < 0 {
		return Money{}, errors.New("money cannot be negative")
	}
	return Money{paise: paise}, nil
}

func (m Money) Paise() int64 {
	return m.paise
}

func (m Money) Rupees() float64 {
	return float64(m.paise) / 100.0
}

func (m Money) Add(other Money) Money {
	return Money{paise: m.paise + other.paise}
}

func (m Money) Sub(other Money) Money {
	return Money{paise: m.paise - other.paise}
}

func (m Money) MulDays(days int) Money {
	return Money{paise: m.paise * int64(days)}
}

// Percent applies an integer percentage, truncating sub-paise remainders.
func (m Money) Percent(pct int) Money {
	return Money{paise: m.paise * int64(pct) / 100}
}

func (m Money) IsZero() bool {
	return m.paise == 0
}

func (m Money) IsNegative() bool {
	return m.paise < 0
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: value}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
