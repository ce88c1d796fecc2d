package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Form types accepted by the public submission endpoints.
const (
	FormTypeDesignConsultant = "design_consultant"
	FormTypeInquiry          = "inquiry"
	FormTypeContact          = "contact"
)

// Submission workflow states.
const (
	SubmissionStatusNew        = "new"
	SubmissionStatusInProgress = "in_progress"
	SubmissionStatusCompleted  = "completed"
	SubmissionStatusRejected   = "rejected"
)

// FormSubmission captures one public form submission. Fields holds
// form-specific extras that do not warrant their own columns.
type FormSubmission struct {
	BaseModel

	Name  string `gorm:"size:128;not null" json:"name"`
	Email string `gorm:"size:128;not null" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`

	FormType string `gorm:"size:32;not null;index" json:"form_type"`

	Company            string `gorm:"size:128" json:"company"`
	Subject            string `gorm:"size:255" json:"subject"`
	Message            string `gorm:"type:text" json:"message"`
	InterestOfServices string `gorm:"type:text" json:"interest_of_services"`

	Status     string         `gorm:"size:20;not null;default:new;index" json:"status"`
	AdminNotes string         `gorm:"type:text" json:"admin_notes"`
	Fields     datatypes.JSON `json:"fields,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidFormType reports whether t is one of the accepted form types.
func ValidFormType(t string) bool {
	switch t {
	case FormTypeDesignConsultant, FormTypeInquiry, FormTypeContact:
		return true
	}
	return false
}

// ValidSubmissionStatus reports whether s is a known workflow state.
func ValidSubmissionStatus(s string) bool {
	switch s {
	case SubmissionStatusNew, SubmissionStatusInProgress, SubmissionStatusCompleted, SubmissionStatusRejected:
		return true
	}
	return false
}
