package models

type SubmissionCreate struct {
	AssignmentID int64          `json:"assignment_id"`
	QuizAnswers  map[string]any `json:"quiz_answers,omitempty"`
	EssayText    string         `json:"essay_text,omitempty"`
	Code         string         `json:"code,omitempty"`
	Attachments  []string       `json:"attachments,omitempty"`
}

type Submission struct {
	ID           int64            `json:"id"`
	AssignmentID int64            `json:"assignment_id"`
	UserID       int64            `json:"user_id"`
	Status       SubmissionStatus `json:"status"`
	QuizAnswers  map[string]any   `json:"quiz_answers"`
	EssayText    string           `json:"essay_text"`
	Code         string           `json:"code"`
	Attachments  []string         `json:"attachments"`
	SubmittedAt  Timestamp        `json:"submitted_at"`
	GradedAt     Timestamp        `json:"graded_at"`
	Comments     string           `json:"comments"`
}

// SubmissionRow — сдача вместе с заданием, курсом и оценкой (/my/submissions).
type SubmissionRow struct {
	SubmissionID     int64            `json:"submission_id"`
	SubmissionStatus SubmissionStatus `json:"submission_status"`
	SubmittedAt      Timestamp        `json:"submitted_at"`
	GradedAt         Timestamp        `json:"graded_at"`
	CreatedAt        Timestamp        `json:"created_at"`
	AssignmentID     int64            `json:"assignment_id"`
	AssignmentTitle  string           `json:"assignment_title"`
	PointsPossible   int              `json:"points_possible"`
	LessonID         int64            `json:"lesson_id"`
	LessonTitle      string           `json:"lesson_title"`
	CourseID         int64            `json:"course_id"`
	CourseTitle      string           `json:"course_title"`
	PointsEarned     *float64         `json:"points_earned"`
	Percentage       *float64         `json:"percentage"`
	Feedback         string           `json:"feedback"`
}

// TeachingSubmission — то же, плюс студент (/teaching/submissions).
type TeachingSubmission struct {
	SubmissionRow
	StudentID    int64  `json:"student_id"`
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// AssignmentSubmission — сдача в списке по заданию (/assignments/{id}/submissions).
type AssignmentSubmission struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	UserName       string           `json:"user_name"`
	UserEmail      string           `json:"user_email"`
	Status         SubmissionStatus `json:"status"`
	SubmittedAt    Timestamp        `json:"submitted_at"`
	GradedAt       Timestamp        `json:"graded_at"`
	PointsEarned   *float64         `json:"points_earned"`
	PointsPossible *float64         `json:"points_possible"`
	Percentage     *float64         `json:"percentage"`
	Feedback       string           `json:"feedback"`
}

type GradeInput struct {
	PointsEarned float64 `json:"points_earned"`
	Feedback     *string `json:"feedback"`
}

type GradeResult struct {
	Message      string  `json:"message"`
	SubmissionID int64   `json:"submission_id"`
	PointsEarned float64 `json:"points_earned"`
	Percentage   float64 `json:"percentage"`
}

type GradeCreate struct {
	SubmissionID int64   `json:"submission_id"`
	PointsEarned float64 `json:"points_earned"`
	Feedback     *string `json:"feedback,omitempty"`
}

type Grade struct {
	ID             int64     `json:"id"`
	SubmissionID   int64     `json:"submission_id"`
	GraderID       *int64    `json:"grader_id"`
	PointsEarned   float64   `json:"points_earned"`
	PointsPossible float64   `json:"points_possible"`
	Percentage     float64   `json:"percentage"`
	Feedback       string    `json:"feedback"`
	CreatedAt      Timestamp `json:"created_at"`
}

type DetailedGrade struct {
	Grade
	AssignmentID    int64  `json:"assignment_id"`
	AssignmentTitle string `json:"assignment_title"`
	CourseID        int64  `json:"course_id"`
	CourseTitle     string `json:"course_title"`
}

type AdminStats struct {
	TotalUsers       int                `json:"total_users"`
	TotalCourses     int                `json:"total_courses"`
	TotalEnrollments int                `json:"total_enrollments"`
	TotalSubmissions int                `json:"total_submissions"`
	ProgressRanges   []ProgressRange    `json:"progressRanges"`
	Courses          []CoursePopularity `json:"courses"`
	RecentActivities []Activity         `json:"recentActivities"`
}

type ProgressRange struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

type CoursePopularity struct {
	Title    string `json:"title"`
	Students int    `json:"students"`
}

type Activity struct {
	TS     string `json:"ts"`
	User   string `json:"user"`
	Action string `json:"action"`
	Time   string `json:"time"`
}
