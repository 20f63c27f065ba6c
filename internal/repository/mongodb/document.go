package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
)

const (
	fieldID               = "_id"
	fieldDateTime         = "date_time"
	fieldSurgeryType      = "surgery_type"
	fieldSurgeonName      = "surgeon_name"
	fieldPatientName      = "patient_name"
	fieldPatientBirthdate = "patient_birthdate"
	fieldPatientAge       = "patient_age"
)

type surgeryDocument struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	DateTime         time.Time     `bson:"date_time"`
	SurgeryType      string        `bson:"surgery_type"`
	SurgeonName      string        `bson:"surgeon_name"`
	PatientName      string        `bson:"patient_name"`
	PatientBirthdate time.Time     `bson:"patient_birthdate"`
	PatientAge       int           `bson:"patient_age"`
}

// toDocument leaves ID zero so the driver assigns one on insert.
func toDocument(s *surgery.Surgery) surgeryDocument {
	return surgeryDocument{
		DateTime:         s.DateTime.UTC(),
		SurgeryType:      s.SurgeryType,
		SurgeonName:      s.SurgeonName,
		PatientName:      s.PatientName,
		PatientBirthdate: surgery.DateOnly(s.PatientBirthdate),
		PatientAge:       s.PatientAge,
	}
}

func (d *surgeryDocument) toEntity() *surgery.Surgery {
	return &surgery.Surgery{
		ID:               d.ID.Hex(),
		DateTime:         d.DateTime.UTC(),
		SurgeryType:      d.SurgeryType,
		SurgeonName:      d.SurgeonName,
		PatientName:      d.PatientName,
		PatientBirthdate: surgery.DateOnly(d.PatientBirthdate.UTC()),
		PatientAge:       d.PatientAge,
	}
}

// setFields builds the $set operand for the present fields of c.
func setFields(c *surgery.Changes) bson.M {
	set := bson.M{}
	if c == nil {
		return set
	}
	if c.DateTime != nil {
		set[fieldDateTime] = c.DateTime.UTC()
	}
	if c.SurgeryType != nil {
		set[fieldSurgeryType] = *c.SurgeryType
	}
	if c.SurgeonName != nil {
		set[fieldSurgeonName] = *c.SurgeonName
	}
	if c.PatientName != nil {
		set[fieldPatientName] = *c.PatientName
	}
	if c.PatientBirthdate != nil {
		set[fieldPatientBirthdate] = surgery.DateOnly(*c.PatientBirthdate)
	}
	if c.PatientAge != nil {
		set[fieldPatientAge] = *c.PatientAge
	}
	return set
}
