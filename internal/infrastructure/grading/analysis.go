package grading

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/restclient"
)

type Analyses struct {
	client *restclient.Client
}

func NewAnalyses(client *restclient.Client) *Analyses {
	return &Analyses{client: client}
}

func (a *Analyses) GetByStudent(ctx context.Context, classroomID, studentID int64) (*domain.Analysis, error) {
	var out domain.Analysis
	err := a.client.DoJSON(ctx, restclient.Request{
		Operation: "analysis_get",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/analysis/classrooms/%d/students/%d", classroomID, studentID),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "grading.analysis_get", fmt.Errorf("empty analysis for classroom %d student %d", classroomID, studentID))
	}
	return &out, nil
}

func (a *Analyses) Create(ctx context.Context, analysis domain.NewAnalysis) (*domain.Analysis, error) {
	var out domain.Analysis
	err := a.client.DoJSON(ctx, restclient.Request{
		Operation: "analysis_create",
		Method:    http.MethodPost,
		Path:      "/analysis",
		JSON:      analysis,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
