package domain

type Attachment struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

type Rubric struct {
	ID              int64        `json:"id"`
	ClassroomID     int64        `json:"classroomId"`
	Title           string       `json:"title"`
	Questions       string       `json:"questions"`
	GradingCriteria string       `json:"gradingCriteria"`
	Criteria        string       `json:"criteria,omitempty"`
	TotalMarks      float64      `json:"totalMarks"`
	StudentIDs      []int64      `json:"studentIds,omitempty"`
	Documents       []Attachment `json:"documents,omitempty"`
	Images          []Attachment `json:"images,omitempty"`
	QuestionImages  []Attachment `json:"questionImages,omitempty"`
}

// RubricDraft is the input accepted when provisioning a new assignment.
type RubricDraft struct {
	Title           string  `json:"title" yaml:"title" validate:"required,max=200"`
	Questions       string  `json:"questions" yaml:"questions" validate:"required"`
	GradingCriteria string  `json:"gradingCriteria" yaml:"gradingCriteria" validate:"required"`
	Criteria        string  `json:"criteria" yaml:"criteria"`
	TotalMarks      float64 `json:"totalMarks" yaml:"totalMarks" validate:"gte=0"`
}

type NewRubric struct {
	ClassroomID     int64   `json:"classroomId"`
	Title           string  `json:"title"`
	Questions       string  `json:"questions"`
	GradingCriteria string  `json:"gradingCriteria"`
	Criteria        string  `json:"criteria,omitempty"`
	TotalMarks      float64 `json:"totalMarks,omitempty"`
	StudentIDs      []int64 `json:"studentIds"`
}

type ImageMetadata struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProvisionResult struct {
	Rubric      Rubric       `json:"rubric"`
	Submissions []Submission `json:"submissions"`
}
