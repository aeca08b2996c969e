package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/lms-bot/internal/models"
)

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range cases {
		if got := columnName(n); got != want {
			t.Fatalf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFilenames(t *testing.T) {
	if got := BuildGradesFilename("  Анна   Петрова "); got != "Оценки — Анна Петрова.xlsx" {
		t.Fatalf("grades = %q", got)
	}
	if got := BuildSubmissionsFilename("a/b", ""); got != "Сдачи — a_b — все.xlsx" {
		t.Fatalf("submissions = %q", got)
	}
	if got := BuildGradesFilename(""); got != "Оценки — —.xlsx" {
		t.Fatalf("empty = %q", got)
	}
}

func TestBuild_NoSheets(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Fatal("ожидали ошибку для пустой книги")
	}
}

func TestGradesWorkbook(t *testing.T) {
	grades := []models.DetailedGrade{
		{
			Grade: models.Grade{
				ID: 1, PointsEarned: 85, PointsPossible: 100, Percentage: 85, Feedback: "Хорошо",
				CreatedAt: models.Timestamp{Time: time.Date(2026, 1, 7, 7, 11, 0, 0, time.UTC)},
			},
			AssignmentTitle: "Эссе", CourseTitle: "Go",
		},
	}
	raw, err := Bytes([]SheetSpec{GradesSheet(grades, time.FixedZone("MSK", 3*3600))})
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Оценки")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != "Курс" || rows[0][6] != "Дата" {
		t.Fatalf("header = %v", rows[0])
	}
	want := []string{"Go", "Эссе", "85", "100", "85", "Хорошо", "7 января 2026, 10:11"}
	for i, w := range want {
		if rows[1][i] != w {
			t.Fatalf("cell %d = %q, want %q", i, rows[1][i], w)
		}
	}
}

func TestSubmissionsSheet(t *testing.T) {
	pts := 90.0
	subs := []models.TeachingSubmission{
		{SubmissionRow: models.SubmissionRow{SubmissionStatus: models.Graded, AssignmentTitle: "Тест", PointsEarned: &pts}, StudentName: "Иван"},
		{SubmissionRow: models.SubmissionRow{SubmissionStatus: models.Submitted}, StudentName: ""},
	}
	s := SubmissionsSheet(subs, time.UTC)
	if len(s.Rows) != 2 {
		t.Fatalf("rows = %d", len(s.Rows))
	}
	if s.Rows[0][0] != "Иван" || s.Rows[0][5] != "оценено" || s.Rows[0][7] != 90.0 {
		t.Fatalf("row0 = %v", s.Rows[0])
	}
	if s.Rows[1][0] != "—" || s.Rows[1][7] != "" || s.Rows[1][5] != "сдано" {
		t.Fatalf("row1 = %v", s.Rows[1])
	}

	f, err := Build([]SheetSpec{GradesSheet(nil, nil), s})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Оценки" || got[1] != "Сдачи" {
		t.Fatalf("sheets = %v", got)
	}
}
