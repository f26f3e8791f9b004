package domain

// Analysis is the per-(classroom, student) aggregate grading attaches to.
type Analysis struct {
	ID        int64  `json:"id"`
	ClassID   int64  `json:"classId"`
	StudentID int64  `json:"studentId"`
	Summary   string `json:"summary"`
}

type NewAnalysis struct {
	ClassID   int64  `json:"classId"`
	StudentID int64  `json:"studentId"`
	Summary   string `json:"summary"`
}
