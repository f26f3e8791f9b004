package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeUploadResult picks the contract by payload shape: an object carrying a
// submissions array is an assignment, one carrying student fields is a submission.
func decodeUploadResult(body []byte) (domain.UploadResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] != '{' {
		return domain.UploadResult{Kind: domain.UploadKindEmpty}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.UploadResult{}, domain.WrapError(domain.ErrServer, "grading.submission_upload_images", fmt.Errorf("decode upload response: %w", err))
	}

	if _, ok := fields["submissions"]; ok {
		var assignment domain.Assignment
		if err := json.Unmarshal(trimmed, &assignment); err != nil {
			return domain.UploadResult{}, domain.WrapError(domain.ErrServer, "grading.submission_upload_images", fmt.Errorf("decode assignment: %w", err))
		}
		return domain.UploadResult{Kind: domain.UploadKindAssignment, Assignment: &assignment}, nil
	}

	_, hasStudent := fields["studentId"]
	_, hasAnswer := fields["writtenAnswer"]
	_, hasSubmitted := fields["submitted"]
	if hasStudent || hasAnswer || hasSubmitted {
		var submission domain.Submission
		if err := json.Unmarshal(trimmed, &submission); err != nil {
			return domain.UploadResult{}, domain.WrapError(domain.ErrServer, "grading.submission_upload_images", fmt.Errorf("decode submission: %w", err))
		}
		return domain.UploadResult{Kind: domain.UploadKindSubmission, Submission: &submission}, nil
	}

	return domain.UploadResult{Kind: domain.UploadKindEmpty}, nil
}

// decodeFeedback accepts plain text, a JSON string or an object with a feedback field.
func decodeFeedback(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", domain.WrapError(domain.ErrServer, "grading.submission_feedback", err)
		}
		return text, nil
	case '{':
		var payload struct {
			Feedback *string `json:"feedback"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return "", domain.WrapError(domain.ErrServer, "grading.submission_feedback", err)
		}
		if payload.Feedback == nil {
			return "", domain.WrapError(domain.ErrServer, "grading.submission_feedback", fmt.Errorf("feedback field missing"))
		}
		return strings.TrimSpace(*payload.Feedback), nil
	default:
		return strings.TrimSpace(string(trimmed)), nil
	}
}
