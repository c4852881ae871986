package models

import (
	"time"
)

// AttachmentKind names one of the three upload slots of a student record
type AttachmentKind string

const (
	AttachmentPassport AttachmentKind = "passport"
	AttachmentDiplom   AttachmentKind = "diplom"
	AttachmentImage    AttachmentKind = "image"
)

// AttachmentKinds lists the upload slots in form-field order
var AttachmentKinds = []AttachmentKind{AttachmentPassport, AttachmentDiplom, AttachmentImage}

// Student is the persisted enrollment and financial state of one student
type Student struct {
	ID           string `json:"id" db:"id" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	Name         string `json:"name" db:"name" example:"Aru"`
	Surname      string `json:"surname" db:"surname" example:"Bekova"`
	ParentName   string `json:"parentName" db:"parent_name" example:"Dana"`
	Mobile       string `json:"mobile" db:"mobile" example:"+77011234567"`
	ParentMobile string `json:"parentMobile" db:"parent_mobile" example:"+77017654321"`
	Study        string `json:"study" db:"study" example:"CS"`
	Prof         string `json:"prof" db:"prof" example:"eng"`
	Year         int    `json:"year" db:"year" example:"2026"`

	ServiceCost  float64 `json:"serviceCost" db:"service_cost" example:"1000"`
	ServicePayed float64 `json:"servicePayed" db:"service_payed" example:"200"`
	AnnualCost   float64 `json:"annualCost" db:"annual_cost" example:"500"`
	AnnualPayed  float64 `json:"annualPayed" db:"annual_payed" example:"0"`

	IsSessionOpen        bool `json:"isSessionOpen" db:"is_session_open"`
	IsNastrfication      bool `json:"isNastrfication" db:"is_nastrfication"`
	IsNastrficationPayed bool `json:"isNastrficationPayed" db:"is_nastrfication_payed"`

	Passport *string `json:"passport" db:"passport" example:"uploads/1727740800000-1a2b3c4d-passport.pdf"`
	Diplom   *string `json:"diplom" db:"diplom"`
	Image    *string `json:"image" db:"image"`

	// Version is bumped by every write; clients may compare it to spot lost updates
	Version   int64     `json:"version" db:"version"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Attachment returns the reference stored for kind, or nil
func (s *Student) Attachment(kind AttachmentKind) *string {
	switch kind {
	case AttachmentPassport:
		return s.Passport
	case AttachmentDiplom:
		return s.Diplom
	case AttachmentImage:
		return s.Image
	}
	return nil
}

// SetAttachment binds ref to the slot named by kind
func (s *Student) SetAttachment(kind AttachmentKind, ref string) {
	switch kind {
	case AttachmentPassport:
		s.Passport = &ref
	case AttachmentDiplom:
		s.Diplom = &ref
	case AttachmentImage:
		s.Image = &ref
	}
}

// ResetForNewYear applies the yearly rollover to the in-memory record
func (s *Student) ResetForNewYear() {
	s.ServicePayed = 0
	s.AnnualPayed = 0
	s.IsSessionOpen = true
}
