package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/okta-import/internal/domain"
	"github.com/spec-kit/okta-import/internal/observability"
	"github.com/spec-kit/okta-import/internal/policy"
	"github.com/spec-kit/okta-import/internal/provisioning"
	"github.com/spec-kit/okta-import/internal/repository"
	apperrors "github.com/spec-kit/okta-import/pkg/util/errorutil"
)

var serviceDefaults = domain.ProvisioningDefaults{
	FirstName: "New",
	LastName:  "User",
	Password:  "Default1pass",
	Question:  "Favourite colour?",
	Answer:    "blue",
}

func newImportService(importer BatchImporter, cfg ImportServiceConfig) (*ImportService, repository.ImportRunRepository) {
	runs := repository.NewMemoryImportRunRepository()
	svc := NewImportService(importer, runs, serviceDefaults, observability.NewMetrics(), zap.NewNop(), cfg)
	ids := 0
	svc.newID = func() string {
		ids++
		return "run-" + string(rune('0'+ids))
	}
	return svc, runs
}

func createdResult(emails ...string) *domain.BatchResult {
	result := &domain.BatchResult{}
	for _, email := range emails {
		result.Add(domain.EmailResult{Email: email, Outcome: domain.OutcomeCreated, UserID: "id-" + email})
	}
	return result
}

func TestImportCompletesRun(t *testing.T) {
	importer := new(MockBatchImporter)
	importer.On("ImportBatch", mock.Anything, provisioning.Request{
		RawEmails: "a@x.io\nb@x.io",
		Password:  "Given1pass",
		Question:  "Q?",
		Answer:    "A",
	}, serviceDefaults).Return(createdResult("a@x.io", "b@x.io"), nil).Once()

	svc, _ := newImportService(importer, ImportServiceConfig{})
	run, err := svc.Import(context.Background(), "admin-1", ImportInput{
		EmailsList: "a@x.io\nb@x.io",
		Password:   "Given1pass",
		Question:   "Q?",
		Answer:     "A",
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, domain.ImportRunStatusCompleted, run.Status)
	require.NotNil(t, run.AdminID)
	assert.Equal(t, "admin-1", *run.AdminID)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 2, run.Created)
	assert.NotNil(t, run.FinishedAt)

	stored, err := svc.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportRunStatusCompleted, stored.Status)
	require.Len(t, stored.Results, 2)
	assert.Equal(t, "b@x.io", stored.Results[1].Email)
	importer.AssertExpectations(t)
}

func TestImportFallsBackToDefaults(t *testing.T) {
	importer := new(MockBatchImporter)
	importer.On("ImportBatch", mock.Anything, mock.MatchedBy(func(req provisioning.Request) bool {
		return req.Password == serviceDefaults.Password &&
			req.Question == serviceDefaults.Question &&
			req.Answer == serviceDefaults.Answer
	}), serviceDefaults).Return(createdResult("a@x.io"), nil).Once()

	svc, _ := newImportService(importer, ImportServiceConfig{})
	run, err := svc.Import(context.Background(), "", ImportInput{EmailsList: "a@x.io"})
	require.NoError(t, err)
	assert.Nil(t, run.AdminID)
	importer.AssertExpectations(t)
}

func TestImportRejectedPassword(t *testing.T) {
	rejection := policy.Validate("short", "").Err()
	importer := new(MockBatchImporter)
	importer.On("ImportBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil, rejection).Once()

	svc, _ := newImportService(importer, ImportServiceConfig{})
	run, err := svc.Import(context.Background(), "admin-1", ImportInput{EmailsList: "a@x.io", Password: "short"})
	require.Error(t, err)

	var pwErr *policy.PasswordError
	require.True(t, errors.As(err, &pwErr))
	assert.Equal(t, policy.ReasonTooShort, pwErr.Reason)

	require.NotNil(t, run)
	assert.Equal(t, domain.ImportRunStatusRejected, run.Status)
	assert.Equal(t, pwErr.Message, run.Error)
	assert.Zero(t, run.Total)

	stored, getErr := svc.Get(context.Background(), run.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.ImportRunStatusRejected, stored.Status)
}

func TestImportKeepsPartialResultOnCancel(t *testing.T) {
	importer := new(MockBatchImporter)
	importer.On("ImportBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(createdResult("a@x.io"), context.Canceled).Once()

	svc, _ := newImportService(importer, ImportServiceConfig{})
	run, err := svc.Import(context.Background(), "", ImportInput{EmailsList: "a@x.io\nb@x.io"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Equal(t, domain.ImportRunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.Created)
	assert.NotEmpty(t, run.Error)
}

func TestImportRejectsOversizedBatch(t *testing.T) {
	importer := new(MockBatchImporter)
	svc, runs := newImportService(importer, ImportServiceConfig{MaxEmailsPerBatch: 2})

	_, err := svc.Import(context.Background(), "", ImportInput{EmailsList: "a@x.io\nb@x.io\n\nc@x.io"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
	importer.AssertNotCalled(t, "ImportBatch", mock.Anything, mock.Anything, mock.Anything)

	listed, listErr := runs.List(context.Background(), 10)
	require.NoError(t, listErr)
	assert.Empty(t, listed)
}

func TestImportListAndGet(t *testing.T) {
	importer := new(MockBatchImporter)
	importer.On("ImportBatch", mock.Anything, mock.Anything, mock.Anything).Return(createdResult("a@x.io"), nil)

	svc, _ := newImportService(importer, ImportServiceConfig{ListLimit: 2})
	for i := 0; i < 3; i++ {
		_, err := svc.Import(context.Background(), "", ImportInput{EmailsList: "a@x.io"})
		require.NoError(t, err)
	}

	runs, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestImportDefaults(t *testing.T) {
	svc, _ := newImportService(new(MockBatchImporter), ImportServiceConfig{})
	assert.Equal(t, FormDefaults{
		Password: serviceDefaults.Password,
		Question: serviceDefaults.Question,
		Answer:   serviceDefaults.Answer,
	}, svc.Defaults())
}

func TestImportObserverAbortIsRejected(t *testing.T) {
	abort := fmt.Errorf("%w: %w", provisioning.ErrObserver, errors.New("blocked domain"))
	importer := new(MockBatchImporter)
	importer.On("ImportBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil, abort).Once()

	svc, _ := newImportService(importer, ImportServiceConfig{})
	run, err := svc.Import(context.Background(), "admin-1", ImportInput{EmailsList: "a@x.io", Password: "Given1pass"})
	require.ErrorIs(t, err, provisioning.ErrObserver)
	require.NotNil(t, run)
	assert.Equal(t, domain.ImportRunStatusRejected, run.Status)
	assert.Contains(t, run.Error, "blocked domain")
	assert.Zero(t, run.Total)

	stored, getErr := svc.Get(context.Background(), run.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.ImportRunStatusRejected, stored.Status)
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.ToDomainError(err).HTTPStatus)
}
