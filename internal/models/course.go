package models

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// Уровни сложности, которые принимает бэкенд.
var DifficultyLevels = []string{"beginner", "intermediate", "advanced"}

type Course struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Category        string       `json:"category"`
	DifficultyLevel string       `json:"difficulty_level"`
	Status          CourseStatus `json:"status"`
	AuthorID        int64        `json:"author_id"`
	IsPublic        bool         `json:"is_public"`
	EnrolledCount   int          `json:"enrolled_count"`
	RatingAvg       float64      `json:"rating_avg"`
	RatingCount     int          `json:"rating_count"`
	CreatedAt       Timestamp    `json:"created_at"`
	UpdatedAt       Timestamp    `json:"updated_at"`
	Modules         []Module     `json:"modules"`
}

type Module struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   Timestamp `json:"created_at"`
	Lessons     []Lesson  `json:"lessons"`
}

type Lesson struct {
	ID         int64  `json:"id"`
	ModuleID   int64  `json:"module_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

type CourseCreate struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	DifficultyLevel string `json:"difficulty_level"`
	IsPublic        bool   `json:"is_public"`
}

// CourseUpdate — частичное обновление: nil-поля не отправляются.
type CourseUpdate struct {
	Title           *string       `json:"title,omitempty"`
	Description     *string       `json:"description,omitempty"`
	Category        *string       `json:"category,omitempty"`
	DifficultyLevel *string       `json:"difficulty_level,omitempty"`
	IsPublic        *bool         `json:"is_public,omitempty"`
	Status          *CourseStatus `json:"status,omitempty"`
}

type ModuleCreate struct {
	CourseID    int64  `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
}

type ModuleUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	OrderIndex  *int    `json:"order_index,omitempty"`
}

type LessonCreate struct {
	ModuleID   int64  `json:"module_id"`
	Title      string `json:"title"`
	Content    string `json:"content,omitempty"`
	OrderIndex int    `json:"order_index"`
}

type Enrollment struct {
	ID                 int64     `json:"id"`
	CourseID           int64     `json:"course_id"`
	UserID             int64     `json:"user_id"`
	EnrolledAt         Timestamp `json:"enrolled_at"`
	CompletedAt        Timestamp `json:"completed_at"`
	ProgressPercentage float64   `json:"progress_percentage"`
}

type Progress struct {
	CourseID             int64    `json:"course_id"`
	CompletedLessons     int      `json:"completed_lessons"`
	TotalLessons         int      `json:"total_lessons"`
	CompletedAssignments int      `json:"completed_assignments"`
	TotalAssignments     int      `json:"total_assignments"`
	AverageGrade         *float64 `json:"average_grade"`
}

// Message — типичный ответ бэкенда на действие без сущности.
type Message struct {
	Message      string `json:"message"`
	SubmissionID int64  `json:"submission_id,omitempty"`
	Status       string `json:"status,omitempty"`
}
