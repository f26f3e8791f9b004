package roster

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/restclient"
)

// Directory reads classroom enrolments from the roster service.
type Directory struct {
	client *restclient.Client
}

func NewDirectory(client *restclient.Client) *Directory {
	return &Directory{client: client}
}

type studentPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (d *Directory) ListClassroomStudents(ctx context.Context, classroomID int64) ([]domain.Student, error) {
	var payload []studentPayload
	err := d.client.DoJSON(ctx, restclient.Request{
		Operation: "classroom_students",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/classrooms/%d/students", classroomID),
	}, &payload)
	if err != nil {
		return nil, err
	}

	students := make([]domain.Student, 0, len(payload))
	for _, p := range payload {
		name := p.Name
		if name == "" {
			name = joinName(p.FirstName, p.LastName)
		}
		students = append(students, domain.Student{ID: p.ID, Name: name})
	}
	return students, nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
