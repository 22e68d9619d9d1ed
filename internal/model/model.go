package model

// Role represents a chat message role in a student's assistant conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry of a student's chat log with the AI assistant.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Question is a single question of a task. Questions are stored embedded in
// the task row; the ID is synthesized as "{taskID}-{position+1}" and is
// stable only while question order and count are unchanged.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Task is a unit of classroom work with an ordered list of questions.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// GraderSlot names a grade column on a response row. Grade1 through Grade5
// belong to individual human graders; GradeFinal holds the authoritative
// consolidated grade; GradeAI holds the machine suggestion.
type GraderSlot string

const (
	Grade1     GraderSlot = "Grade1"
	Grade2     GraderSlot = "Grade2"
	Grade3     GraderSlot = "Grade3"
	Grade4     GraderSlot = "Grade4"
	Grade5     GraderSlot = "Grade5"
	GradeFinal GraderSlot = "GradeFinal"
	GradeAI    GraderSlot = "GradeAI"
)

// GraderSlots lists the human grader slots in column order.
var GraderSlots = []GraderSlot{Grade1, Grade2, Grade3, Grade4, Grade5}

// IsHumanSlot reports whether s is one of the Grade1..Grade5 columns.
func (s GraderSlot) IsHumanSlot() bool {
	for _, g := range GraderSlots {
		if s == g {
			return true
		}
	}
	return false
}

// MinGrade and MaxGrade bound the closed score set. Grades are not an open
// numeric range: only 0, 1, and 2 are permitted values.
const (
	MinGrade = 0
	MaxGrade = 2
)

// ValidGrade reports whether v is in the permitted score set.
func ValidGrade(v int) bool {
	return v >= MinGrade && v <= MaxGrade
}

// Response is one student's submitted answer to one question of one task,
// together with its chat transcript and grade columns. Exactly one response
// exists per (StudentID, TaskID, QuestionID); the repository enforces this
// at append time since the store cannot.
type Response struct {
	Timestamp  string                `json:"timestamp"`
	StudentID  string                `json:"studentId"`
	TaskID     string                `json:"taskId"`
	QuestionID string                `json:"questionId"`
	TimeTaken  float64               `json:"timeTaken"`
	Answer     string                `json:"answer"`
	ChatLog    []ChatMessage         `json:"chatLog,omitempty"`
	Grades     map[GraderSlot]string `json:"grades"`
	FinalGrade string                `json:"finalGrade"`
	AIGrade    string                `json:"aiGrade"`
}

// AssignmentStatus summarizes how widely a task is assigned.
type AssignmentStatus string

const (
	AssignedNone AssignmentStatus = "none"
	AssignedSome AssignmentStatus = "some"
	AssignedAll  AssignmentStatus = "all"
)

// Student is a roster entry from the Data sheet.
type Student struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	Login string `json:"login"`
}

// Grader is a grader login mapped to its grade column.
type Grader struct {
	Login string     `json:"login"`
	Slot  GraderSlot `json:"slot"`
}
