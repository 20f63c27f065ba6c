package v1

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
)

// Accepted date_time layouts. Values without an offset are read as UTC and a
// bare date means midnight UTC. Fractional seconds are accepted by every layout.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	surgery.DateLayout,
}

type ScheduleSurgeryRequest struct {
	DateTime         string `json:"date_time" binding:"required"`
	SurgeryType      string `json:"surgery_type" binding:"required,max=200"`
	SurgeonName      string `json:"surgeon_name" binding:"required,max=200"`
	PatientName      string `json:"patient_name" binding:"required,max=200"`
	PatientBirthdate string `json:"patient_birthdate" binding:"required"`
}

func (r *ScheduleSurgeryRequest) toCommand() (*surgery.CreateSurgeryCommand, []string) {
	var errs []string

	at, err := parseDateTime(r.DateTime)
	if err != nil {
		errs = append(errs, "date_time must be an ISO 8601 date-time")
	}
	birth, err := parseDate(r.PatientBirthdate)
	if err != nil {
		errs = append(errs, "patient_birthdate must be a date in YYYY-MM-DD format")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &surgery.CreateSurgeryCommand{
		DateTime:         at,
		SurgeryType:      r.SurgeryType,
		SurgeonName:      r.SurgeonName,
		PatientName:      r.PatientName,
		PatientBirthdate: birth,
	}, nil
}

// ModifySurgeryRequest fields left out of the body (or sent as null) are not
// changed. patient_age is not accepted; it is always derived.
type ModifySurgeryRequest struct {
	DateTime         *string `json:"date_time"`
	SurgeryType      *string `json:"surgery_type" binding:"omitempty,max=200"`
	SurgeonName      *string `json:"surgeon_name" binding:"omitempty,max=200"`
	PatientName      *string `json:"patient_name" binding:"omitempty,max=200"`
	PatientBirthdate *string `json:"patient_birthdate"`
}

func (r *ModifySurgeryRequest) toCommand() (*surgery.UpdateSurgeryCommand, []string) {
	var errs []string
	cmd := &surgery.UpdateSurgeryCommand{
		SurgeryType: r.SurgeryType,
		SurgeonName: r.SurgeonName,
		PatientName: r.PatientName,
	}

	if r.DateTime != nil {
		at, err := parseDateTime(*r.DateTime)
		if err != nil {
			errs = append(errs, "date_time must be an ISO 8601 date-time")
		} else {
			cmd.DateTime = &at
		}
	}
	if r.PatientBirthdate != nil {
		birth, err := parseDate(*r.PatientBirthdate)
		if err != nil {
			errs = append(errs, "patient_birthdate must be a date in YYYY-MM-DD format")
		} else {
			cmd.PatientBirthdate = &birth
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cmd, nil
}

type SurgeryResponse struct {
	ID               string    `json:"id"`
	DateTime         time.Time `json:"date_time"`
	SurgeryType      string    `json:"surgery_type"`
	SurgeonName      string    `json:"surgeon_name"`
	PatientName      string    `json:"patient_name"`
	PatientBirthdate string    `json:"patient_birthdate"`
	PatientAge       int       `json:"patient_age"`
}

func toSurgeryResponse(s *surgery.Surgery) SurgeryResponse {
	return SurgeryResponse{
		ID:               s.ID,
		DateTime:         s.DateTime,
		SurgeryType:      s.SurgeryType,
		SurgeonName:      s.SurgeonName,
		PatientName:      s.PatientName,
		PatientBirthdate: s.PatientBirthdate.Format(surgery.DateLayout),
		PatientAge:       s.PatientAge,
	}
}

func toPagedResponse(p *surgery.PagedSurgeries) PagedResponse[SurgeryResponse] {
	data := make([]SurgeryResponse, 0, len(p.Surgeries))
	for _, s := range p.Surgeries {
		data = append(data, toSurgeryResponse(s))
	}
	return PagedResponse[SurgeryResponse]{
		Data: data,
		Pagination: Pagination{
			Page:       p.Page,
			PageSize:   p.PageSize,
			TotalCount: p.TotalCount,
			TotalPages: p.TotalPages,
		},
	}
}

func parseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(surgery.DateLayout, strings.TrimSpace(raw))
}
