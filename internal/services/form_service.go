package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

// DesignConsultantInput is the public design-consultant request form.
type DesignConsultantInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// InquiryInput is the public service-inquiry form.
type InquiryInput struct {
	Name               string `json:"name" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone"`
	Company            string `json:"company"`
	InterestOfServices string `json:"interest_of_services" validate:"required"`
	Message            string `json:"message" validate:"required"`
}

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// UpdateSubmissionInput carries the admin-side workflow changes.
type UpdateSubmissionInput struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// FormListOptions extends the common list options with submission filters.
type FormListOptions struct {
	ListOptions

	FormType string
	Status   string
}

// SubmissionStats aggregates active submissions for the admin dashboard.
type SubmissionStats struct {
	Total    int64                   `json:"total"`
	ByType   map[string]int64        `json:"by_type"`
	ByStatus map[string]int64        `json:"by_status"`
	Recent   []models.FormSubmission `json:"recent"`
}

// FormService handles public form submissions and their admin workflow.
type FormService struct {
	db *gorm.DB
}

// NewFormService constructs a FormService using the provided database handle.
func NewFormService(db *gorm.DB) (*FormService, error) {
	if db == nil {
		return nil, errors.New("form service: db is required")
	}
	return &FormService{db: db}, nil
}

var formSortable = map[string]string{
	"name":       "name",
	"email":      "email",
	"status":     "status",
	"created_at": "created_at",
}

// SubmitDesignConsultant records a design-consultant request.
func (s *FormService) SubmitDesignConsultant(ctx context.Context, input DesignConsultantInput) (*models.FormSubmission, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.NewValidation("Name and email are required")
	}

	return s.create(ctx, &models.FormSubmission{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    input.Phone,
		FormType: models.FormTypeDesignConsultant,
		Status:   models.SubmissionStatusNew,
	})
}

// SubmitInquiry records a service inquiry.
func (s *FormService) SubmitInquiry(ctx context.Context, input InquiryInput) (*models.FormSubmission, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" ||
		strings.TrimSpace(input.InterestOfServices) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidation("Name, email, interest of services, and message are required")
	}

	return s.create(ctx, &models.FormSubmission{
		Name:               strings.TrimSpace(input.Name),
		Email:              strings.TrimSpace(input.Email),
		Phone:              input.Phone,
		Company:            input.Company,
		InterestOfServices: input.InterestOfServices,
		Message:            input.Message,
		FormType:           models.FormTypeInquiry,
		Status:             models.SubmissionStatusNew,
	})
}

// SubmitContact records a contact-form message.
func (s *FormService) SubmitContact(ctx context.Context, input ContactInput) (*models.FormSubmission, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" ||
		strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidation("Name, email, and message are required")
	}

	return s.create(ctx, &models.FormSubmission{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    input.Phone,
		Subject:  input.Subject,
		Message:  input.Message,
		FormType: models.FormTypeContact,
		Status:   models.SubmissionStatusNew,
	})
}

func (s *FormService) create(ctx context.Context, submission *models.FormSubmission) (*models.FormSubmission, error) {
	ctx = ensureContext(ctx)

	if submission.Fields == nil {
		submission.Fields = datatypes.JSON([]byte("{}"))
	}
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, fmt.Errorf("form service: create submission: %w", err)
	}
	return submission, nil
}

// List returns active submissions, searchable across name/email/subject
// and filterable by form type and workflow status.
func (s *FormService) List(ctx context.Context, opts FormListOptions) ([]models.FormSubmission, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.FormSubmission{})
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"name LIKE ? OR email LIKE ? OR subject LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if opts.FormType != "" {
		query = query.Where("form_type = ?", opts.FormType)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("form service: count submissions: %w", err)
	}

	var submissions []models.FormSubmission
	if err := applyOrder(query, opts.Order, formSortable).
		Offset(opts.offset()).
		Limit(opts.limit()).
		Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("form service: list submissions: %w", err)
	}

	return submissions, total, nil
}

// Get loads one active submission.
func (s *FormService) Get(ctx context.Context, id string) (*models.FormSubmission, error) {
	ctx = ensureContext(ctx)

	var submission models.FormSubmission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Form submission not found")
		}
		return nil, fmt.Errorf("form service: load submission: %w", err)
	}
	return &submission, nil
}

// UpdateStatus moves a submission through the workflow and/or records
// admin notes. Empty fields keep their current values.
func (s *FormService) UpdateStatus(ctx context.Context, id string, input UpdateSubmissionInput) (*models.FormSubmission, error) {
	ctx = ensureContext(ctx)

	var submission models.FormSubmission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Form submission not found")
		}
		return nil, fmt.Errorf("form service: load submission: %w", err)
	}

	if input.Status != "" && !models.ValidSubmissionStatus(input.Status) {
		return nil, apperrors.NewValidation("Invalid status value")
	}

	updates := map[string]any{}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.AdminNotes != "" {
		updates["admin_notes"] = input.AdminNotes
	}
	if len(updates) == 0 {
		return &submission, nil
	}

	if err := s.db.WithContext(ctx).Model(&submission).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("form service: update submission: %w", err)
	}
	return &submission, nil
}

// Delete soft-deletes a submission.
func (s *FormService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var submission models.FormSubmission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Form submission not found")
		}
		return fmt.Errorf("form service: load submission: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&submission).Error; err != nil {
		return fmt.Errorf("form service: delete submission: %w", err)
	}
	return nil
}

// Stats aggregates active submissions by type and workflow status, plus
// the five most recent.
func (s *FormService) Stats(ctx context.Context) (*SubmissionStats, error) {
	ctx = ensureContext(ctx)

	stats := &SubmissionStats{
		ByType:   map[string]int64{},
		ByStatus: map[string]int64{},
	}

	if err := s.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("form service: count submissions: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byType []bucket
	if err := s.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Select("form_type AS key, COUNT(id) AS count").
		Group("form_type").
		Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("form service: group by type: %w", err)
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	var byStatus []bucket
	if err := s.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Select("status AS key, COUNT(id) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("form service: group by status: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.Recent).Error; err != nil {
		return nil, fmt.Errorf("form service: recent submissions: %w", err)
	}

	return stats, nil
}
