package model

// QuestionResult is one graded question in an export.
type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Answer     string `json:"answer"`
	FinalGrade string `json:"final_grade"`
	AIGrade    string `json:"ai_grade,omitempty"`
}

// TaskResult is one student's outcome on one task.
type TaskResult struct {
	TaskID    string           `json:"task_id"`
	Title     string           `json:"title"`
	Complete  bool             `json:"complete"`
	Questions []QuestionResult `json:"questions"`
}

// StudentResult groups a student's task results for export.
type StudentResult struct {
	StudentID string       `json:"student_id"`
	Tasks     []TaskResult `json:"tasks"`
}

// GradeExport is the top-level export document.
type GradeExport struct {
	ClassID string          `json:"class_id,omitempty"`
	Date    string          `json:"date,omitempty"`
	Results []StudentResult `json:"results"`
}
