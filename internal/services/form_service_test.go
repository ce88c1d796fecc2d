package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunarcms/lunar/internal/database/testutil"
	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

func setupForms(t *testing.T) *FormService {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewFormService(db)
	require.NoError(t, err)
	return svc
}

func TestFormServiceSubmit(t *testing.T) {
	svc := setupForms(t)
	ctx := context.Background()

	consult, err := svc.SubmitDesignConsultant(ctx, DesignConsultantInput{
		Name:  "Pat",
		Email: "pat@example.com",
		Phone: "555-0100",
	})
	require.NoError(t, err)
	require.Equal(t, models.FormTypeDesignConsultant, consult.FormType)
	require.Equal(t, models.SubmissionStatusNew, consult.Status)

	_, err = svc.SubmitDesignConsultant(ctx, DesignConsultantInput{Name: "Pat"})
	requireKind(t, err, apperrors.KindValidation)

	inquiry, err := svc.SubmitInquiry(ctx, InquiryInput{
		Name:               "Sam",
		Email:              "sam@example.com",
		InterestOfServices: "landscaping",
		Message:            "Looking for a quote",
	})
	require.NoError(t, err)
	require.Equal(t, models.FormTypeInquiry, inquiry.FormType)

	_, err = svc.SubmitInquiry(ctx, InquiryInput{Name: "Sam", Email: "sam@example.com"})
	requireKind(t, err, apperrors.KindValidation)

	contact, err := svc.SubmitContact(ctx, ContactInput{
		Name:    "Kim",
		Email:   "kim@example.com",
		Subject: "Hello",
		Message: "Hi there",
	})
	require.NoError(t, err)
	require.Equal(t, models.FormTypeContact, contact.FormType)
}

func TestFormServiceListFilters(t *testing.T) {
	svc := setupForms(t)
	ctx := context.Background()

	_, err := svc.SubmitContact(ctx, ContactInput{Name: "Kim", Email: "kim@example.com", Message: "m"})
	require.NoError(t, err)
	inquiry, err := svc.SubmitInquiry(ctx, InquiryInput{
		Name: "Sam", Email: "sam@example.com", InterestOfServices: "x", Message: "m",
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, inquiry.ID, UpdateSubmissionInput{Status: models.SubmissionStatusCompleted})
	require.NoError(t, err)

	submissions, total, err := svc.List(ctx, FormListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, submissions, 2)

	submissions, total, err = svc.List(ctx, FormListOptions{FormType: models.FormTypeInquiry})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "sam@example.com", submissions[0].Email)

	submissions, _, err = svc.List(ctx, FormListOptions{Status: models.SubmissionStatusNew})
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.Equal(t, "kim@example.com", submissions[0].Email)

	submissions, _, err = svc.List(ctx, FormListOptions{ListOptions: ListOptions{Search: "sam"}})
	require.NoError(t, err)
	require.Len(t, submissions, 1)
}

func TestFormServiceUpdateStatus(t *testing.T) {
	svc := setupForms(t)
	ctx := context.Background()

	submission, err := svc.SubmitContact(ctx, ContactInput{Name: "Kim", Email: "kim@example.com", Message: "m"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, submission.ID, UpdateSubmissionInput{
		Status:     models.SubmissionStatusInProgress,
		AdminNotes: "called back",
	})
	require.NoError(t, err)

	reloaded, err := svc.Get(ctx, updated.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusInProgress, reloaded.Status)
	require.Equal(t, "called back", reloaded.AdminNotes)

	_, err = svc.UpdateStatus(ctx, submission.ID, UpdateSubmissionInput{Status: "bogus"})
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.UpdateStatus(ctx, "missing-id", UpdateSubmissionInput{Status: models.SubmissionStatusNew})
	requireKind(t, err, apperrors.KindNotFound)
}

func TestFormServiceDelete(t *testing.T) {
	svc := setupForms(t)
	ctx := context.Background()

	submission, err := svc.SubmitContact(ctx, ContactInput{Name: "Kim", Email: "kim@example.com", Message: "m"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, submission.ID))

	err = svc.Delete(ctx, submission.ID)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.Get(ctx, submission.ID)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestFormServiceStats(t *testing.T) {
	svc := setupForms(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SubmitContact(ctx, ContactInput{Name: "Kim", Email: "kim@example.com", Message: "m"})
		require.NoError(t, err)
	}
	inquiry, err := svc.SubmitInquiry(ctx, InquiryInput{
		Name: "Sam", Email: "sam@example.com", InterestOfServices: "x", Message: "m",
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, inquiry.ID, UpdateSubmissionInput{Status: models.SubmissionStatusCompleted})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.Total)
	require.EqualValues(t, 2, stats.ByType[models.FormTypeContact])
	require.EqualValues(t, 1, stats.ByType[models.FormTypeInquiry])
	require.EqualValues(t, 2, stats.ByStatus[models.SubmissionStatusNew])
	require.EqualValues(t, 1, stats.ByStatus[models.SubmissionStatusCompleted])
	require.Len(t, stats.Recent, 3)
}
