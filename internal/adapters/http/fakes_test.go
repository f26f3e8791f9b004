package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/config"
	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

type ingestFake struct {
	got []domain.UploadedFile
	err error
}

func (f *ingestFake) IngestImages(_ context.Context, submissionID int64, images []domain.UploadedFile) (domain.UploadResult, error) {
	f.got = images
	if f.err != nil {
		return domain.UploadResult{}, f.err
	}
	return domain.UploadResult{Kind: domain.UploadKindSubmission, Submission: &domain.Submission{ID: submissionID}}, nil
}

type processFake struct {
	got    domain.ProcessRequest
	result *domain.ProcessResult
	err    error
}

func (f *processFake) Process(_ context.Context, req domain.ProcessRequest) (*domain.ProcessResult, error) {
	f.got = req
	return f.result, f.err
}

type runsFake struct {
	run *domain.Run
	err error
}

func (f runsFake) LatestRun(context.Context, int64) (*domain.Run, error) {
	return f.run, f.err
}

type queueFake struct {
	published []domain.ProcessRequest
}

func (f *queueFake) PublishProcessRequest(_ context.Context, req domain.ProcessRequest) error {
	f.published = append(f.published, req)
	return nil
}

func (f *queueFake) SubscribeProcessRequests(context.Context, func(context.Context, domain.ProcessRequest) error) error {
	return nil
}

type provisionFake struct {
	got domain.RubricDraft
}

func (f *provisionFake) Provision(_ context.Context, classroomID int64, draft domain.RubricDraft) (*domain.ProvisionResult, error) {
	f.got = draft
	return &domain.ProvisionResult{Rubric: domain.Rubric{ID: 3, ClassroomID: classroomID, Title: draft.Title}}, nil
}

type attachmentsFake struct{}

func (attachmentsFake) ListRubrics(context.Context, int64) ([]domain.Rubric, error) {
	return nil, nil
}

func (attachmentsFake) UploadDocuments(context.Context, int64, []domain.UploadedFile) error {
	return nil
}

func (attachmentsFake) UploadImages(context.Context, int64, []domain.UploadedFile) ([]domain.ImageMetadata, error) {
	return []domain.ImageMetadata{{ID: 1, Filename: "q.png"}}, nil
}

func (attachmentsFake) DeleteImage(context.Context, int64, int64) ([]domain.ImageMetadata, error) {
	return []domain.ImageMetadata{}, nil
}

type gradebookFake struct{}

func (gradebookFake) Submissions(context.Context, int64, int64) ([]domain.Submission, error) {
	return []domain.Submission{{ID: 42}}, nil
}

func (gradebookFake) Progress(context.Context, int64, int64) (*domain.Analysis, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "progress", errors.New("no analysis"))
}

func (gradebookFake) Export(_ context.Context, _, _ int64, w io.Writer) error {
	_, err := w.Write([]byte("PK-xlsx"))
	return err
}

type sessionsFake struct {
	loggedOut []string
}

func (f *sessionsFake) Login(_ context.Context, email, password string) (*domain.Session, error) {
	if password != "secret" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("bad credentials"))
	}
	return &domain.Session{Token: "tok", UserID: 1, Email: email}, nil
}

func (f *sessionsFake) Logout(_ context.Context, session *domain.Session) error {
	f.loggedOut = append(f.loggedOut, session.Token)
	return nil
}

func (f *sessionsFake) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	if token != "tok" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("unknown token"))
	}
	return &domain.Session{Token: token, UserID: 1}, nil
}

type testDeps struct {
	ingest    *ingestFake
	process   *processFake
	queue     *queueFake
	provision *provisionFake
	sessions  *sessionsFake
	runs      runsFake
}

func newTestDeps() *testDeps {
	return &testDeps{
		ingest:    &ingestFake{},
		process:   &processFake{},
		queue:     &queueFake{},
		provision: &provisionFake{},
		sessions:  &sessionsFake{},
	}
}

func (d *testDeps) handler(cfg config.Config) http.Handler {
	return NewRouter(cfg, Dependencies{
		Ingest:      d.ingest,
		Process:     d.process,
		Runs:        d.runs,
		Queue:       d.queue,
		Provision:   d.provision,
		Attachments: attachmentsFake{},
		Gradebook:   gradebookFake{},
		Sessions:    d.sessions,
	}).Handler()
}

func newTestHandler(cfg config.Config) http.Handler {
	return newTestDeps().handler(cfg)
}
