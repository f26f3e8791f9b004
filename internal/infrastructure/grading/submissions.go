package grading

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/restclient"
)

type Submissions struct {
	client *restclient.Client
}

func NewSubmissions(client *restclient.Client) *Submissions {
	return &Submissions{client: client}
}

func (s *Submissions) UploadImages(ctx context.Context, submissionID int64, images []domain.UploadedFile) (domain.UploadResult, error) {
	resp, err := s.client.Do(ctx, restclient.Request{
		Operation: "submission_upload_images",
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/submissions/%d/upload-images", submissionID),
		Form:      &restclient.Multipart{Field: "images", Files: images},
	})
	if err != nil {
		return domain.UploadResult{}, err
	}
	return decodeUploadResult(resp.Body)
}

func (s *Submissions) ExtractImages(ctx context.Context, submissionID int64) error {
	_, err := s.client.Do(ctx, restclient.Request{
		Operation:  "submission_extract",
		Method:     http.MethodPut,
		Path:       fmt.Sprintf("/submissions/%d/extractPNG", submissionID),
		Idempotent: true,
	})
	return err
}

func (s *Submissions) Grade(ctx context.Context, submissionID, analysisID int64) (*domain.Submission, error) {
	var graded domain.Submission
	resp, err := s.client.Do(ctx, restclient.Request{
		Operation: "submission_grade",
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/submissions/%d/grade/%d", submissionID, analysisID),
	})
	if err != nil {
		return nil, err
	}
	if resp.Empty() {
		return nil, domain.WrapError(domain.ErrServer, "grading.submission_grade", fmt.Errorf("empty grading response"))
	}
	if err := decodeJSON(resp.Body, &graded); err != nil {
		return nil, domain.WrapError(domain.ErrServer, "grading.submission_grade", err)
	}
	if graded.ID == 0 {
		graded.ID = submissionID
	}
	return &graded, nil
}

func (s *Submissions) MarkSubmitted(ctx context.Context, submissionID int64) error {
	_, err := s.client.Do(ctx, restclient.Request{
		Operation:  "submission_mark_submitted",
		Method:     http.MethodPut,
		Path:       fmt.Sprintf("/submissions/%d/mark-submitted", submissionID),
		Idempotent: true,
	})
	return err
}

func (s *Submissions) MarkGraded(ctx context.Context, submissionID int64) error {
	_, err := s.client.Do(ctx, restclient.Request{
		Operation:  "submission_mark_graded",
		Method:     http.MethodPut,
		Path:       fmt.Sprintf("/submissions/%d/mark-graded", submissionID),
		Idempotent: true,
	})
	return err
}

// ListByStudent treats 404 as an empty list.
func (s *Submissions) ListByStudent(ctx context.Context, classroomID, studentID int64) ([]domain.Submission, error) {
	var out []domain.Submission
	err := s.client.DoJSON(ctx, restclient.Request{
		Operation: "submission_list",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/submissions/classrooms/%d/students/%d", classroomID, studentID),
	}, &out)
	if domain.IsKind(err, domain.ErrNotFound) {
		return []domain.Submission{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Submission{}
	}
	return out, nil
}

func (s *Submissions) Feedback(ctx context.Context, studentID, classroomID, rubricID int64) (string, error) {
	query := url.Values{}
	query.Set("studentId", strconv.FormatInt(studentID, 10))
	query.Set("classroomId", strconv.FormatInt(classroomID, 10))
	query.Set("markingRubricId", strconv.FormatInt(rubricID, 10))

	resp, err := s.client.Do(ctx, restclient.Request{
		Operation: "submission_feedback",
		Method:    http.MethodGet,
		Path:      "/submissions/feedback",
		Query:     query,
	})
	if err != nil {
		return "", err
	}
	return decodeFeedback(resp.Body)
}

func (s *Submissions) Create(ctx context.Context, draft domain.NewSubmissionDraft) (*domain.Submission, error) {
	var created domain.Submission
	err := s.client.DoJSON(ctx, restclient.Request{
		Operation: "submission_create",
		Method:    http.MethodPost,
		Path:      "/submissions",
		JSON:      draft,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
