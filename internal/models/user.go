package models

type Role string

const (
	Student Role = "student"
	// Generic — роль, которую бэкенд выдаёт при обычной регистрации.
	Generic Role = "user"
	Teacher Role = "teacher"
	Admin   Role = "admin"
)

// Capabilities — явный набор прав, выводимый из роли.
type Capabilities struct {
	CanGrade          bool
	CanEditCourses    bool
	CanViewAdminStats bool
}

// Capabilities выводит набор прав из роли. Бэкенд пускает преподавателя
// и в админ-статистику, поэтому teacher получает тот же набор, что и admin.
func (r Role) Capabilities() Capabilities {
	switch r {
	case Admin, Teacher:
		return Capabilities{CanGrade: true, CanEditCourses: true, CanViewAdminStats: true}
	default:
		return Capabilities{}
	}
}

// IsAdmin — флаг "админского" интерфейса: admin или teacher.
func (r Role) IsAdmin() bool { return r == Admin || r == Teacher }

// IsTeacher отражает только реально сохранённую роль.
func (r Role) IsTeacher() bool { return r == Teacher }

func (r Role) Label() string {
	switch r {
	case Admin:
		return "Администратор"
	case Teacher:
		return "Преподаватель"
	default:
		return "Студент"
	}
}

// NormalizeRegistrationRole: при регистрации бэкенду уходит ровно "teacher" или "user".
func NormalizeRegistrationRole(r Role) Role {
	if r == Teacher {
		return Teacher
	}
	return Generic
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type ProfileStats struct {
	ActiveCourses       int     `json:"active_courses"`
	SubmittedWorks      int     `json:"submitted_works"`
	TotalAssignments    int     `json:"total_assignments"`
	ProgressPercent     float64 `json:"progress_percent"`
	AverageGradePercent float64 `json:"average_grade_percent"`
}
