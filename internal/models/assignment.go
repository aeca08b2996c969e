package models

import "time"

type AssignmentType string

const (
	Quiz    AssignmentType = "quiz"
	Essay   AssignmentType = "essay"
	Code    AssignmentType = "code"
	Project AssignmentType = "project"
)

type SubmissionStatus string

const (
	Pending   SubmissionStatus = "pending"
	Submitted SubmissionStatus = "submitted"
	Graded    SubmissionStatus = "graded"
	Late      SubmissionStatus = "late"
)

func (s SubmissionStatus) Label() string {
	switch s {
	case Submitted:
		return "сдано"
	case Graded:
		return "оценено"
	case Late:
		return "сдано с опозданием"
	default:
		return "не сдано"
	}
}

type Assignment struct {
	ID               int64          `json:"id"`
	LessonID         int64          `json:"lesson_id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	AssignmentType   AssignmentType `json:"assignment_type"`
	PointsPossible   int            `json:"points_possible"`
	DueDate          Timestamp      `json:"due_date"`
	TimeLimitMinutes *int           `json:"time_limit_minutes"`
	CreatedAt        Timestamp      `json:"created_at"`
}

// AssignmentDetail — задание вместе со сдачей текущего пользователя.
type AssignmentDetail struct {
	Assignment
	CourseID   int64            `json:"course_id"`
	Submission *SubmissionBrief `json:"submission"`
}

type SubmissionBrief struct {
	ID          int64            `json:"id"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt Timestamp        `json:"submitted_at"`
	GradedAt    Timestamp        `json:"graded_at"`
}

type AssignmentCreate struct {
	LessonID         int64          `json:"lesson_id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	AssignmentType   AssignmentType `json:"assignment_type"`
	PointsPossible   int            `json:"points_possible"`
	DueDate          *Timestamp     `json:"due_date"`
	TimeLimitMinutes *int           `json:"time_limit_minutes"`
}

// MyAssignment — строка списка заданий студента (/users/me/assignments).
type MyAssignment struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	AssignmentType AssignmentType   `json:"assignment_type"`
	PointsPossible int              `json:"points_possible"`
	DueDate        Timestamp        `json:"due_date"`
	LessonID       int64            `json:"lesson_id"`
	LessonTitle    string           `json:"lesson_title"`
	CourseID       int64            `json:"course_id"`
	CourseTitle    string           `json:"course_title"`
	Status         SubmissionStatus `json:"status"`
	SubmissionID   *int64           `json:"submission_id"`
	SubmittedAt    Timestamp        `json:"submitted_at"`
	GradedAt       Timestamp        `json:"graded_at"`
}

// TeachingAssignment — задание в курсах преподавателя (/teaching/assignments).
type TeachingAssignment struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	AssignmentType AssignmentType `json:"assignment_type"`
	PointsPossible int            `json:"points_possible"`
	DueDate        Timestamp      `json:"due_date"`
	LessonID       int64          `json:"lesson_id"`
	LessonTitle    string         `json:"lesson_title"`
	CourseID       int64          `json:"course_id"`
	CourseTitle    string         `json:"course_title"`
	SubmittedCount int            `json:"submitted_count"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Points        int      `json:"points"`
}

type QuizData struct {
	Questions        []QuizQuestion `json:"questions"`
	ShuffleQuestions bool           `json:"shuffle_questions"`
	ShuffleOptions   bool           `json:"shuffle_options"`
}

type QuizResult struct {
	Message        string `json:"message"`
	QuestionsCount int    `json:"questions_count"`
}

// Reminder — отправленное напоминание о сроке задания.
type Reminder struct {
	AssignmentID int64
	DueAt        time.Time
}
