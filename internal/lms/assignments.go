package lms

import (
	"context"
	"net/http"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

// Значения по умолчанию для нового задания.
const (
	DefaultAssignmentType   = models.Quiz
	DefaultAssignmentPoints = 100
)

type AssignmentService struct{ api apiclient.Doer }

func (s *AssignmentService) Create(ctx context.Context, lessonID int64, in models.AssignmentCreate) (models.Assignment, error) {
	in.LessonID = lessonID
	if in.AssignmentType == "" {
		in.AssignmentType = DefaultAssignmentType
	}
	if in.PointsPossible == 0 {
		in.PointsPossible = DefaultAssignmentPoints
	}
	var out models.Assignment
	err := s.api.Do(ctx, http.MethodPost, "/lessons/"+id(lessonID)+"/assignments", in, nil, &out)
	return out, err
}

func (s *AssignmentService) Get(ctx context.Context, assignmentID int64) (models.AssignmentDetail, error) {
	var out models.AssignmentDetail
	err := s.api.Do(ctx, http.MethodGet, "/assignments/"+id(assignmentID), nil, nil, &out)
	return out, err
}

func (s *AssignmentService) Submit(ctx context.Context, assignmentID int64, in models.SubmissionCreate) (models.Submission, error) {
	in.AssignmentID = assignmentID
	var out models.Submission
	err := s.api.Do(ctx, http.MethodPost, "/assignments/"+id(assignmentID)+"/submit", in, nil, &out)
	return out, err
}

// SubmitSimple — отметка «сдано» без содержимого.
func (s *AssignmentService) SubmitSimple(ctx context.Context, assignmentID int64) (models.Message, error) {
	return s.action(ctx, http.MethodPost, assignmentID, "/submit-simple")
}

func (s *AssignmentService) Start(ctx context.Context, assignmentID int64) (models.Message, error) {
	return s.action(ctx, http.MethodPost, assignmentID, "/start")
}

func (s *AssignmentService) Complete(ctx context.Context, assignmentID int64) (models.Message, error) {
	return s.action(ctx, http.MethodPost, assignmentID, "/complete")
}

// Unsubmit отзывает собственную сдачу.
func (s *AssignmentService) Unsubmit(ctx context.Context, assignmentID int64) (models.Message, error) {
	return s.action(ctx, http.MethodDelete, assignmentID, "/my-submission")
}

func (s *AssignmentService) action(ctx context.Context, method string, assignmentID int64, suffix string) (models.Message, error) {
	var out models.Message
	err := s.api.Do(ctx, method, "/assignments/"+id(assignmentID)+suffix, nil, nil, &out)
	return out, err
}

func (s *AssignmentService) SetQuizQuestions(ctx context.Context, assignmentID int64, quiz models.QuizData) (models.QuizResult, error) {
	var out models.QuizResult
	err := s.api.Do(ctx, http.MethodPost, "/assignments/"+id(assignmentID)+"/quiz-questions", quiz, nil, &out)
	return out, err
}

func (s *AssignmentService) Submissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	var out []models.AssignmentSubmission
	err := s.api.Do(ctx, http.MethodGet, "/assignments/"+id(assignmentID)+"/submissions", nil, nil, &out)
	return out, err
}

// Mine — задания студента, status: "", pending, submitted, graded.
func (s *AssignmentService) Mine(ctx context.Context, status string) ([]models.MyAssignment, error) {
	var out []models.MyAssignment
	err := s.api.Do(ctx, http.MethodGet, "/users/me/assignments", nil, statusParams(status), &out)
	return out, err
}

func (s *AssignmentService) Teaching(ctx context.Context) ([]models.TeachingAssignment, error) {
	var out []models.TeachingAssignment
	err := s.api.Do(ctx, http.MethodGet, "/teaching/assignments", nil, nil, &out)
	return out, err
}
