package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/timeslot"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
	"github.com/edulane/tutor-booking-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

var scheduleHeaders = []string{"Date", "Day", "Start", "End", "Duration", "Student", "Level", "Status"}

type exportLessonRepo interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
}

type exportTeacherRepo interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type exportStudentRepo interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

// ExportService renders a teacher's schedule over a date range as CSV or PDF.
type ExportService struct {
	lessons  exportLessonRepo
	teachers exportTeacherRepo
	students exportStudentRepo
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(lessons exportLessonRepo, teachers exportTeacherRepo, students exportStudentRepo, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		lessons:  lessons,
		teachers: teachers,
		students: students,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// ExportResult carries the rendered document and its suggested metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// TeacherSchedule renders the teacher's lessons between dateFrom and dateTo
// inclusive, ordered by date and start time.
func (s *ExportService) TeacherSchedule(ctx context.Context, teacherID, dateFrom, dateTo string, format ExportFormat) (*ExportResult, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "format must be csv or pdf")
	}
	if _, err := timeslot.DayName(dateFrom); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "date_from must be an ISO YYYY-MM-DD value")
	}
	if _, err := timeslot.DayName(dateTo); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "date_to must be an ISO YYYY-MM-DD value")
	}
	if dateFrom > dateTo {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "date_from must not be after date_to")
	}

	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	lessons, _, err := s.lessons.List(ctx, models.LessonFilter{
		TeacherID: teacherID,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		PageSize:  200,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student roster")
	}
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.ID] = st.FullName
	}

	dataset := export.Dataset{Headers: scheduleHeaders, Rows: make([]map[string]string, 0, len(lessons))}
	for _, lesson := range lessons {
		day, _ := timeslot.DayName(lesson.Date)
		name := names[lesson.StudentID]
		if name == "" {
			name = lesson.StudentID
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     lesson.Date,
			"Day":      day,
			"Start":    lesson.StartTime,
			"End":      timeslot.AddMinutes(lesson.StartTime, lesson.Duration),
			"Duration": fmt.Sprintf("%d min", lesson.Duration),
			"Student":  name,
			"Level":    string(lesson.Level),
			"Status":   string(lesson.Status),
		})
	}

	title := fmt.Sprintf("Schedule %s (%s to %s)", teacher.FullName, dateFrom, dateTo)
	base := fmt.Sprintf("schedule_%s_%s_%s", teacher.ID, dateFrom, dateTo)

	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}, nil
	}
}
