package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/lms"
	"github.com/Spok95/lms-bot/internal/session"
)

const (
	gradeStepPoints = iota
	gradeStepFeedback
)

// GradeDialog — оценка сдачи: баллы → отзыв.
type GradeDialog struct {
	step         int
	submissionID int64
	next         string
	points       float64
}

func newGradeDialog(submissionID, assignmentID int64) (*GradeDialog, fsmutil.Reply) {
	next := "/submissions"
	if assignmentID > 0 {
		next = pathf("/assignments/%d", assignmentID)
	}
	return &GradeDialog{submissionID: submissionID, next: next},
		fsmutil.Reply{Text: fmt.Sprintf("🎓 Оценка сдачи #%d\nВведите баллы (0–%d):", submissionID, lms.MaxPoints), Markup: fsmutil.CancelMarkup()}
}

// parsePoints понимает и "72.5", и "72,5".
func parsePoints(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || !lms.ValidPoints(v) {
		return 0, false
	}
	return v, true
}

func (d *GradeDialog) Step(ctx context.Context, sess *session.Session, text string) (fsmutil.Reply, error) {
	if fsmutil.IsCancelText(text) {
		return fsmutil.Reply{Text: "🚫 Оценивание отменено.", Done: true}, nil
	}
	switch d.step {
	case gradeStepPoints:
		v, ok := parsePoints(text)
		if !ok {
			return fsmutil.Reply{Text: fmt.Sprintf("Нужно число от 0 до %d:", lms.MaxPoints), Markup: fsmutil.CancelMarkup()}, nil
		}
		d.points = v
		d.step = gradeStepFeedback
		return fsmutil.Reply{Text: "Отзыв для студента (или «-» без отзыва):", Markup: fsmutil.CancelMarkup()}, nil

	default:
		feedback := strings.TrimSpace(text)
		if feedback == skipText {
			feedback = ""
		}
		res, err := sess.Services().Submissions.Grade(ctx, d.submissionID, d.points, feedback)
		if err != nil {
			return fsmutil.Reply{}, err
		}
		return fsmutil.Reply{
			Text: fmt.Sprintf("✅ Оценка выставлена: %s (%s%%)", format.Points(res.PointsEarned), format.Points(res.Percentage)),
			Done: true,
			Next: d.next,
		}, nil
	}
}
