// Package guard решает, какой экран показать по пути с учётом состояния
// сессии и прав. Сопоставление путей — дерево chi, без обработчиков.
package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/session"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Screen string

const (
	ScreenLogin       Screen = "login"
	ScreenRegister    Screen = "register"
	ScreenDashboard   Screen = "dashboard"
	ScreenCourses     Screen = "courses"
	ScreenCourseNew   Screen = "course_new"
	ScreenCourse      Screen = "course"
	ScreenModule      Screen = "module"
	ScreenLesson      Screen = "lesson"
	ScreenAssignments Screen = "assignments"
	ScreenAssignment  Screen = "assignment"
	ScreenSubmissions Screen = "submissions"
	ScreenGrades      Screen = "grades"
	ScreenProfile     Screen = "profile"
	ScreenAdmin       Screen = "admin"
)

// Capability — право, без которого маршрут не открывается.
type Capability int

const (
	Anyone Capability = iota
	NeedGrade
	NeedEditCourses
	NeedAdminStats
)

func (c Capability) Allows(caps models.Capabilities) bool {
	switch c {
	case NeedGrade:
		return caps.CanGrade
	case NeedEditCourses:
		return caps.CanEditCourses
	case NeedAdminStats:
		return caps.CanViewAdminStats
	default:
		return true
	}
}

type Route struct {
	Pattern string
	Screen  Screen
	Public  bool
	Needs   Capability
	// Redirect — маршрут-алиас ("/" → "/dashboard").
	Redirect string
}

// Routes — навигационная поверхность приложения.
var Routes = []Route{
	{Pattern: "/login", Screen: ScreenLogin, Public: true},
	{Pattern: "/register", Screen: ScreenRegister, Public: true},
	{Pattern: "/", Redirect: DashboardPath},
	{Pattern: "/dashboard", Screen: ScreenDashboard},
	{Pattern: "/courses", Screen: ScreenCourses},
	{Pattern: "/courses/new", Screen: ScreenCourseNew, Needs: NeedEditCourses},
	{Pattern: "/courses/{courseId}", Screen: ScreenCourse},
	{Pattern: "/courses/{courseId}/modules/{moduleId}", Screen: ScreenModule},
	{Pattern: "/modules/{moduleId}", Screen: ScreenModule},
	{Pattern: "/lessons/{lessonId}", Screen: ScreenLesson},
	{Pattern: "/assignments", Screen: ScreenAssignments},
	{Pattern: "/assignments/{assignmentId}", Screen: ScreenAssignment},
	{Pattern: "/submissions", Screen: ScreenSubmissions},
	{Pattern: "/grades", Screen: ScreenGrades},
	{Pattern: "/profile", Screen: ScreenProfile},
	{Pattern: "/admin", Screen: ScreenAdmin, Needs: NeedAdminStats},
}

type Decision struct {
	Path     string
	Screen   Screen
	Params   map[string]string
	Redirect string
	Loading  bool
	// Forbidden — маршрут есть, но роли не хватает прав.
	Forbidden bool
	NotFound  bool
}

// Render — экран можно показывать как есть.
func (d Decision) Render() bool {
	return !d.Loading && !d.Forbidden && !d.NotFound && d.Redirect == "" && d.Screen != ""
}

type Guard struct {
	mux    *chi.Mux
	routes map[string]Route
}

func New(routes []Route) *Guard {
	g := &Guard{mux: chi.NewRouter(), routes: make(map[string]Route, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		g.mux.Get(r.Pattern, noop)
		g.routes[r.Pattern] = r
	}
	return g
}

// Default — guard со стандартной таблицей Routes.
func Default() *Guard { return New(Routes) }

// Resolve:
//   - Loading: нейтральное ожидание, без редиректов;
//   - Unauthenticated: открываются только публичные маршруты, остальное → /login;
//   - Authenticated: /login и /register → /dashboard, защищённые маршруты
//     открываются с параметрами, без права — Forbidden, неизвестное — NotFound.
func (g *Guard) Resolve(state session.State, caps models.Capabilities, path string) Decision {
	path = Clean(path)
	if state == session.Loading {
		return Decision{Path: path, Loading: true}
	}

	route, params, ok := g.match(path)
	if state != session.Authenticated {
		if ok && route.Public {
			return Decision{Path: path, Screen: route.Screen, Params: params}
		}
		return Decision{Path: path, Redirect: LoginPath}
	}

	if !ok {
		return Decision{Path: path, NotFound: true}
	}
	if route.Public {
		return Decision{Path: path, Redirect: DashboardPath}
	}
	if route.Redirect != "" {
		return Decision{Path: path, Redirect: route.Redirect}
	}
	if !route.Needs.Allows(caps) {
		return Decision{Path: path, Screen: route.Screen, Forbidden: true}
	}
	return Decision{Path: path, Screen: route.Screen, Params: params}
}

func (g *Guard) match(path string) (Route, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	if !g.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, nil, false
	}
	pattern := rctx.RoutePattern()
	// корень chi сопоставляет с пустым шаблоном
	if pattern == "" && path == "/" {
		pattern = "/"
	}
	route, ok := g.routes[pattern]
	if !ok {
		return Route{}, nil, false
	}
	var params map[string]string
	if n := len(rctx.URLParams.Keys); n > 0 {
		params = make(map[string]string, n)
		for i, k := range rctx.URLParams.Keys {
			params[k] = rctx.URLParams.Values[i]
		}
	}
	return route, params, true
}

// Clean приводит путь к виду "/a/b": ведущий слэш, без хвостового и без query.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
