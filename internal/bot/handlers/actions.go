package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/export"
	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/guard"
	"github.com/Spok95/lms-bot/internal/models"
)

// ErrBadAction — callback не разобрать или у действия не те аргументы.
var ErrBadAction = errors.New("handlers: bad action")

// Document — файл, который нужно отправить в чат.
type Document struct {
	Name string
	Data []byte
}

// Result — итог действия. Notice показывается всегда, затем либо
// запускается Dialog с Prompt, либо (если задан Next) перерисовывается экран.
type Result struct {
	Notice   string
	Next     string
	Dialog   fsmutil.Dialog
	Prompt   fsmutil.Reply
	Document *Document
}

type Action struct {
	Needs guard.Capability
	Args  int
	Run   func(ctx context.Context, v View, args []int64) (Result, error)
}

// Actions — verb из "act:<verb>:<id>…".
var Actions = map[string]Action{
	"enroll":         {Args: 1, Run: enroll},
	"progress":       {Args: 1, Run: courseProgress},
	"publish":        {Needs: guard.NeedEditCourses, Args: 1, Run: publish},
	"lesson_done":    {Args: 1, Run: lessonDone},
	"start":          {Args: 1, Run: assignmentAction("start")},
	"submit":         {Args: 1, Run: assignmentAction("submit")},
	"unsubmit":       {Args: 1, Run: assignmentAction("unsubmit")},
	"grade":          {Needs: guard.NeedGrade, Args: 2, Run: grade},
	"add_module":     {Needs: guard.NeedEditCourses, Args: 1, Run: addModule},
	"add_lesson":     {Needs: guard.NeedEditCourses, Args: 1, Run: addLesson},
	"add_assignment": {Needs: guard.NeedEditCourses, Args: 1, Run: addAssignment},
	"del_module":     {Needs: guard.NeedEditCourses, Args: 2, Run: deleteModule},
	"del_lesson":     {Needs: guard.NeedEditCourses, Args: 2, Run: deleteLesson},
	"export_grades":  {Run: exportGrades},
	"export_subs":    {Needs: guard.NeedGrade, Run: exportSubmissions},
}

// ParseAction разбирает "act:<verb>[:<id>…]".
func ParseAction(data string) (string, []int64, error) {
	rest, ok := strings.CutPrefix(data, ActPrefix)
	if !ok || rest == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrBadAction, data)
	}
	parts := strings.Split(rest, ":")
	args := make([]int64, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n <= 0 {
			return "", nil, fmt.Errorf("%w: %q", ErrBadAction, data)
		}
		args = append(args, n)
	}
	return parts[0], args, nil
}

// Lookup находит действие и проверяет число аргументов.
func Lookup(verb string, args []int64) (Action, error) {
	a, ok := Actions[verb]
	if !ok || len(args) != a.Args {
		return Action{}, fmt.Errorf("%w: %s/%d", ErrBadAction, verb, len(args))
	}
	return a, nil
}

func enroll(ctx context.Context, v View, args []int64) (Result, error) {
	if _, err := v.Sess.Services().Courses.Enroll(ctx, args[0]); err != nil {
		return Result{}, err
	}
	return Result{Notice: "✅ Вы записаны на курс.", Next: pathf("/courses/%d", args[0])}, nil
}

func courseProgress(ctx context.Context, v View, args []int64) (Result, error) {
	p, err := v.Sess.Services().Courses.Progress(ctx, args[0])
	if err != nil {
		return Result{}, err
	}
	avg := "—"
	if p.AverageGrade != nil {
		avg = format.Points(*p.AverageGrade) + "%"
	}
	return Result{Notice: fmt.Sprintf("📈 Прогресс по курсу\nУроков: %d из %d\nЗаданий: %d из %d\nСредняя оценка: %s",
		p.CompletedLessons, p.TotalLessons, p.CompletedAssignments, p.TotalAssignments, avg)}, nil
}

func publish(ctx context.Context, v View, args []int64) (Result, error) {
	c, err := v.Sess.Services().Courses.Publish(ctx, args[0])
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: fmt.Sprintf("🚀 Курс «%s» опубликован.", c.Title), Next: pathf("/courses/%d", args[0])}, nil
}

func lessonDone(ctx context.Context, v View, args []int64) (Result, error) {
	msg, err := v.Sess.Services().Lessons.Complete(ctx, args[0])
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: noticeOr(msg, "✅ Урок отмечен как пройденный."), Next: pathf("/lessons/%d", args[0])}, nil
}

func assignmentAction(kind string) func(context.Context, View, []int64) (Result, error) {
	return func(ctx context.Context, v View, args []int64) (Result, error) {
		svc := v.Sess.Services().Assignments
		var (
			msg      models.Message
			err      error
			fallback string
		)
		switch kind {
		case "start":
			msg, err = svc.Start(ctx, args[0])
			fallback = "▶️ Задание начато."
		case "submit":
			msg, err = svc.SubmitSimple(ctx, args[0])
			fallback = "📤 Задание сдано."
		default:
			msg, err = svc.Unsubmit(ctx, args[0])
			fallback = "↩️ Сдача отозвана."
		}
		if err != nil {
			return Result{}, err
		}
		return Result{Notice: noticeOr(msg, fallback), Next: pathf("/assignments/%d", args[0])}, nil
	}
}

func grade(_ context.Context, _ View, args []int64) (Result, error) {
	dlg, prompt := newGradeDialog(args[0], args[1])
	return Result{Dialog: dlg, Prompt: prompt}, nil
}

func addModule(_ context.Context, _ View, args []int64) (Result, error) {
	d := newModuleDialog(args[0])
	return Result{Dialog: d, Prompt: d.prompt()}, nil
}

func addLesson(_ context.Context, _ View, args []int64) (Result, error) {
	d := newLessonDialog(args[0])
	return Result{Dialog: d, Prompt: d.prompt()}, nil
}

func addAssignment(_ context.Context, _ View, args []int64) (Result, error) {
	d := newAssignmentDialog(args[0])
	return Result{Dialog: d, Prompt: d.prompt()}, nil
}

// deleteModule: args = courseID, moduleID.
func deleteModule(ctx context.Context, v View, args []int64) (Result, error) {
	if err := v.Sess.Services().Modules.Delete(ctx, args[0], args[1]); err != nil {
		return Result{}, err
	}
	return Result{Notice: "🗑 Модуль удалён.", Next: pathf("/courses/%d", args[0])}, nil
}

// deleteLesson: args = lessonID, moduleID (куда вернуться).
func deleteLesson(ctx context.Context, v View, args []int64) (Result, error) {
	if err := v.Sess.Services().Lessons.Delete(ctx, args[0]); err != nil {
		return Result{}, err
	}
	return Result{Notice: "🗑 Урок удалён.", Next: pathf("/modules/%d", args[1])}, nil
}

func exportGrades(ctx context.Context, v View, _ []int64) (Result, error) {
	grades, err := v.Sess.Services().Grades.Detailed(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(grades) == 0 {
		return Result{Notice: "Нет оценок для выгрузки."}, nil
	}
	data, err := export.Bytes([]export.SheetSpec{export.GradesSheet(grades, v.Loc)})
	if err != nil {
		return Result{}, fmt.Errorf("export grades: %w", err)
	}
	user, _ := v.Sess.User()
	return Result{
		Notice:   "📥 Оценки выгружены.",
		Document: &Document{Name: export.BuildGradesFilename(user.Name), Data: data},
	}, nil
}

func exportSubmissions(ctx context.Context, v View, _ []int64) (Result, error) {
	subs, err := v.Sess.Services().Submissions.Teaching(ctx, "")
	if err != nil {
		return Result{}, err
	}
	if len(subs) == 0 {
		return Result{Notice: "Нет сдач для выгрузки."}, nil
	}
	data, err := export.Bytes([]export.SheetSpec{export.SubmissionsSheet(subs, v.Loc)})
	if err != nil {
		return Result{}, fmt.Errorf("export submissions: %w", err)
	}
	user, _ := v.Sess.User()
	return Result{
		Notice:   "📥 Сдачи выгружены.",
		Document: &Document{Name: export.BuildSubmissionsFilename(user.Name, ""), Data: data},
	}, nil
}

func noticeOr(msg models.Message, fallback string) string {
	if msg.Message != "" {
		return "✅ " + msg.Message
	}
	return fallback
}
