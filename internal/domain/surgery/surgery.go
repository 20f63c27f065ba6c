package surgery

import (
	"time"
)

// DateLayout is the wire format of calendar dates such as patient_birthdate.
const DateLayout = "2006-01-02"

type Surgery struct {
	// ID is assigned by the store on insert and never changes afterwards.
	ID string

	DateTime         time.Time
	SurgeryType      string
	SurgeonName      string
	PatientName      string
	PatientBirthdate time.Time

	// PatientAge is derived from PatientBirthdate at write time.
	PatientAge int
}

// AgeOn returns the number of completed years between birthdate and now.
func AgeOn(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		years--
	}
	return years
}

func Age(birthdate time.Time) int {
	return AgeOn(birthdate, time.Now())
}

// DateOnly drops the time of day, keeping the calendar date of t as UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type CreateSurgeryCommand struct {
	DateTime         time.Time
	SurgeryType      string
	SurgeonName      string
	PatientName      string
	PatientBirthdate time.Time
}

// UpdateSurgeryCommand carries a partial update. A nil field was not supplied
// and is left untouched.
type UpdateSurgeryCommand struct {
	DateTime         *time.Time
	SurgeryType      *string
	SurgeonName      *string
	PatientName      *string
	PatientBirthdate *time.Time
}

func (c *UpdateSurgeryCommand) IsEmpty() bool {
	return c.DateTime == nil &&
		c.SurgeryType == nil &&
		c.SurgeonName == nil &&
		c.PatientName == nil &&
		c.PatientBirthdate == nil
}

// Changes is the set of stored fields a repository update writes. PatientAge
// is present exactly when PatientBirthdate is.
type Changes struct {
	DateTime         *time.Time
	SurgeryType      *string
	SurgeonName      *string
	PatientName      *string
	PatientBirthdate *time.Time
	PatientAge       *int
}

func (c *Changes) IsEmpty() bool {
	return c == nil || (c.DateTime == nil &&
		c.SurgeryType == nil &&
		c.SurgeonName == nil &&
		c.PatientName == nil &&
		c.PatientBirthdate == nil &&
		c.PatientAge == nil)
}

// Apply copies the present fields onto s.
func (c *Changes) Apply(s *Surgery) {
	if c == nil {
		return
	}
	if c.DateTime != nil {
		s.DateTime = *c.DateTime
	}
	if c.SurgeryType != nil {
		s.SurgeryType = *c.SurgeryType
	}
	if c.SurgeonName != nil {
		s.SurgeonName = *c.SurgeonName
	}
	if c.PatientName != nil {
		s.PatientName = *c.PatientName
	}
	if c.PatientBirthdate != nil {
		s.PatientBirthdate = *c.PatientBirthdate
	}
	if c.PatientAge != nil {
		s.PatientAge = *c.PatientAge
	}
}

// ListSurgeriesQuery is an offset page request; Page is 1-based.
type ListSurgeriesQuery struct {
	Page     int
	PageSize int
}

func (q *ListSurgeriesQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type PagedSurgeries struct {
	Surgeries  []*Surgery
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

func NewPagedSurgeries(items []*Surgery, total int64, q *ListSurgeriesQuery) *PagedSurgeries {
	pages := 0
	if q.PageSize > 0 {
		pages = int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	}
	if items == nil {
		items = []*Surgery{}
	}
	return &PagedSurgeries{
		Surgeries:  items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}
}
