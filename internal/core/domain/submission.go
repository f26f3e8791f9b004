package domain

import (
	"errors"
	"strings"
)

// MaxUploadBytes is the exclusive upper bound for a single uploaded file.
const MaxUploadBytes = 5 << 20

type SubmissionState string

const (
	StateUnsubmitted SubmissionState = "unsubmitted"
	StateSubmitted   SubmissionState = "submitted"
	StateGraded      SubmissionState = "graded"
)

type RubricRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
}

type Submission struct {
	ID                  int64      `json:"id"`
	StudentID           int64      `json:"studentId"`
	ClassroomID         int64      `json:"classroomId"`
	MarkingRubric       *RubricRef `json:"markingRubric,omitempty"`
	MarkingRubricID     int64      `json:"markingRubricId,omitempty"`
	Submitted           bool       `json:"submitted"`
	Graded              bool       `json:"graded"`
	WrittenAnswer       string     `json:"writtenAnswer"`
	Score               *float64   `json:"score"`
	Feedback            *string    `json:"feedback"`
	ValidatedByBayesian bool       `json:"validatedByBayesian"`
}

// RubricID prefers the embedded rubric reference over the flat id.
func (s Submission) RubricID() int64 {
	if s.MarkingRubric != nil && s.MarkingRubric.ID != 0 {
		return s.MarkingRubric.ID
	}
	return s.MarkingRubricID
}

func (s Submission) RubricTitle() string {
	if s.MarkingRubric == nil {
		return ""
	}
	return s.MarkingRubric.Title
}

func (s Submission) State() SubmissionState {
	switch {
	case s.Graded:
		return StateGraded
	case s.Submitted:
		return StateSubmitted
	default:
		return StateUnsubmitted
	}
}

// CheckInvariants reports records the store should never produce.
func (s Submission) CheckInvariants() error {
	if s.Graded && s.Score == nil {
		return errors.New("graded submission without score")
	}
	return nil
}

// NewSubmissionDraft is the record created for every enrolled student when an
// assignment is provisioned.
type NewSubmissionDraft struct {
	StudentID           int64     `json:"studentId"`
	ClassroomID         int64     `json:"classroomId"`
	MarkingRubric       RubricRef `json:"markingRubric"`
	WrittenAnswer       string    `json:"writtenAnswer"`
	Score               float64   `json:"score"`
	Feedback            string    `json:"feedback"`
	ValidatedByBayesian bool      `json:"validatedByBayesian"`
}

type UploadedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (i UploadedFile) Size() int64 {
	return int64(len(i.Content))
}

func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

type UploadKind string

const (
	UploadKindSubmission UploadKind = "submission"
	UploadKindAssignment UploadKind = "assignment"
	UploadKindEmpty      UploadKind = "empty"
)

// Assignment is the parent object some deployments return from image upload.
type Assignment struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	ClassroomID int64        `json:"classroomId"`
	Submissions []Submission `json:"submissions"`
}

// UploadResult tags which response contract the upload endpoint answered with.
type UploadResult struct {
	Kind       UploadKind  `json:"kind"`
	Submission *Submission `json:"submission,omitempty"`
	Assignment *Assignment `json:"assignment,omitempty"`
}
