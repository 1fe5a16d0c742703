package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Tim1119/school-results-server/internal/repository"
	"github.com/Tim1119/school-results-server/internal/repository/models"
	"github.com/Tim1119/school-results-server/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() models.GeneratorConfig {
	return models.GeneratorConfig{
		ID:              "GEN-001",
		AssessmentGroup: "Term 1 Assessments",
		AcademicYear:    "2024-2025",
		AcademicTerm:    "Term 1",
		StudentGroup:    "JSS1-A",
	}
}

// TestNewResultService tests the constructor
func TestNewResultService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{}
		logger := zap.NewNop()

		svc := NewResultService(mockRepo, logger)

		assert.NotNil(t, svc)
		assert.Equal(t, mockRepo, svc.storage)
		assert.Equal(t, logger, svc.logger)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewResultService(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewResultService(&mocks.MockTermResultRepository{}, nil)

		assert.NotNil(t, svc)
		assert.NotNil(t, svc.logger)
	})
}

// TestGenerateClassResults tests the batch generator
func TestGenerateClassResults(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("unknown config id", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			GetGeneratorConfigFunc: func(ctx context.Context, id string) (models.GeneratorConfig, error) {
				return models.GeneratorConfig{}, repository.ErrNotFound
			},
		}

		svc := NewResultService(mockRepo, logger)
		_, err := svc.GenerateClassResults(ctx, "GEN-missing")

		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("missing filter creates zero records", func(t *testing.T) {
		inserts := 0
		cfg := validConfig()
		cfg.AcademicTerm = ""

		mockRepo := &mocks.MockTermResultRepository{
			GetGeneratorConfigFunc: func(ctx context.Context, id string) (models.GeneratorConfig, error) {
				return cfg, nil
			},
			InsertTermResultFunc: func(ctx context.Context, result *models.TermResult) error {
				inserts++
				return nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		_, err := svc.GenerateClassResults(ctx, cfg.ID)

		assert.ErrorIs(t, err, ErrMissingFilters)
		assert.Equal(t, 0, inserts)
	})

	t.Run("empty group is a no-op notice", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			GetGeneratorConfigFunc: func(ctx context.Context, id string) (models.GeneratorConfig, error) {
				return validConfig(), nil
			},
			ListGroupStudentsFunc: func(ctx context.Context, groupID string) ([]string, error) {
				return nil, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		summary, err := svc.GenerateClassResults(ctx, "GEN-001")

		assert.NoError(t, err)
		assert.Equal(t, 0, summary.GeneratedCount)
		require.Len(t, summary.Notices, 1)
		assert.Contains(t, summary.Notices[0], "No students found in JSS1-A")
	})

	t.Run("one record per student", func(t *testing.T) {
		var inserted []*models.TermResult

		mockRepo := &mocks.MockTermResultRepository{
			GetGeneratorConfigFunc: func(ctx context.Context, id string) (models.GeneratorConfig, error) {
				return validConfig(), nil
			},
			ListGroupStudentsFunc: func(ctx context.Context, groupID string) ([]string, error) {
				assert.Equal(t, "JSS1-A", groupID)
				return []string{"STU-001", "STU-002", "STU-003"}, nil
			},
			InsertTermResultFunc: func(ctx context.Context, result *models.TermResult) error {
				inserted = append(inserted, result)
				return nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		summary, err := svc.GenerateClassResults(ctx, "GEN-001")

		assert.NoError(t, err)
		assert.Equal(t, 3, summary.GeneratedCount)
		assert.Equal(t, "JSS1-A", summary.StudentGroup)

		require.Len(t, inserted, 3)
		seen := make(map[string]bool)
		for _, result := range inserted {
			assert.Equal(t, "Term 1 Assessments", result.AssessmentGroup)
			assert.Equal(t, "2024-2025", result.AcademicYear)
			assert.Equal(t, "Term 1", result.AcademicTerm)
			seen[result.Student] = true
		}
		assert.Len(t, seen, 3)
	})

	t.Run("mid-batch insert failure keeps prior count", func(t *testing.T) {
		inserts := 0

		mockRepo := &mocks.MockTermResultRepository{
			GetGeneratorConfigFunc: func(ctx context.Context, id string) (models.GeneratorConfig, error) {
				return validConfig(), nil
			},
			ListGroupStudentsFunc: func(ctx context.Context, groupID string) ([]string, error) {
				return []string{"STU-001", "STU-002", "STU-003"}, nil
			},
			InsertTermResultFunc: func(ctx context.Context, result *models.TermResult) error {
				if inserts == 2 {
					return errors.New("disk full")
				}
				inserts++
				return nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		summary, err := svc.GenerateClassResults(ctx, "GEN-001")

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Equal(t, 2, summary.GeneratedCount)
	})
}

// TestPopulateStudentResult tests the result populator
func TestPopulateStudentResult(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	stub := func() *models.TermResult {
		return &models.TermResult{
			Student:         "STU-001",
			AssessmentGroup: "Term 1 Assessments",
			AcademicYear:    "2024-2025",
			AcademicTerm:    "Term 1",
		}
	}

	score := func(v float64) *float64 { return &v }

	t.Run("copies term dates and student info", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			GetAcademicTermFunc: func(ctx context.Context, id string) (models.AcademicTerm, error) {
				return models.AcademicTerm{ID: id, StartDate: "2024-09-01", EndDate: "2024-12-15"}, nil
			},
			GetStudentFunc: func(ctx context.Context, id string) (models.Student, error) {
				return models.Student{ID: id, Name: "Ada Obi", Gender: "Female"}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Equal(t, "2024-09-01", doc.TermStartDate)
		assert.Equal(t, "2024-12-15", doc.TermEndDate)
		assert.Equal(t, "Female", doc.Gender)
		assert.Equal(t, "STU-001", doc.StudentAdmissionID)
	})

	t.Run("no assessment results leaves empty aggregates", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return []string{"JSS1-A"}, nil
			},
			CountGroupStudentsFunc: func(ctx context.Context, groupID string) (int, error) {
				return 25, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return nil, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		notices, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Empty(t, doc.Subjects)
		assert.Empty(t, doc.Components)
		assert.Nil(t, doc.TermAverage)
		assert.Nil(t, doc.GroupPosition)
		require.Len(t, notices, 1)
		assert.Contains(t, notices[0], "No assessment results found for student STU-001")
	})

	t.Run("missing group membership emits notice and skips group fields", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return nil, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "Mathematics", TotalScore: score(80), Grade: "A", Criteria: "Exam", Score: 80, MaximumScore: 100},
				}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		notices, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Empty(t, doc.StudentGroup)
		assert.Equal(t, 0, doc.GroupSize)
		assert.Nil(t, doc.GroupPosition)
		assert.Nil(t, doc.ProgramPosition)
		require.Len(t, doc.Subjects, 1)
		assert.Contains(t, notices[0], "No student group found for STU-001")
	})

	t.Run("first match wins grouping by course", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return nil, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "English", TotalScore: score(70), Grade: "B", Criteria: "CA", Score: 25, MaximumScore: 30},
					{Course: "English", TotalScore: score(70), Grade: "B", Criteria: "Exam", Score: 45, MaximumScore: 70},
					{Course: "Mathematics", TotalScore: score(90), Grade: "A", Criteria: "Exam", Score: 90, MaximumScore: 100},
				}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		require.Len(t, doc.Subjects, 2)
		assert.Equal(t, "English", doc.Subjects[0].Subject)
		assert.Equal(t, 70.0, doc.Subjects[0].TotalScore)
		assert.Equal(t, "Mathematics", doc.Subjects[1].Subject)

		require.Len(t, doc.Components, 3)
		assert.Equal(t, "CA", doc.Components[0].Criteria)
		assert.Equal(t, "English", doc.Components[0].Subject)
		assert.Equal(t, "Exam", doc.Components[2].Criteria)
		assert.Equal(t, "Mathematics", doc.Components[2].Subject)
	})

	t.Run("class statistics and subject rank", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return []string{"JSS1-A"}, nil
			},
			CountGroupStudentsFunc: func(ctx context.Context, groupID string) (int, error) {
				return 3, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "Mathematics", TotalScore: score(80), Grade: "B", Criteria: "Exam", Score: 80, MaximumScore: 100},
				}, nil
			},
			FetchClassScoresFunc: func(ctx context.Context, groupID, course, assessmentGroup, term, year string) ([]float64, error) {
				return []float64{90, 90, 80}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		require.Len(t, doc.Subjects, 1)
		subject := doc.Subjects[0]
		assert.Equal(t, 90.0, subject.ClassHighestScore)
		assert.Equal(t, 80.0, subject.ClassLowestScore)
		assert.Equal(t, 86.67, subject.ClassAverageScore)
		// two classmates strictly above 80
		assert.Equal(t, "3", subject.Position)
	})

	t.Run("class average of 70 80 90 is 80", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return []string{"JSS1-A"}, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "Mathematics", TotalScore: score(90), Grade: "A", Criteria: "Exam", Score: 90, MaximumScore: 100},
				}, nil
			},
			FetchClassScoresFunc: func(ctx context.Context, groupID, course, assessmentGroup, term, year string) ([]float64, error) {
				return []float64{70, 80, 90}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		require.Len(t, doc.Subjects, 1)
		assert.Equal(t, 80.0, doc.Subjects[0].ClassAverageScore)
		assert.Equal(t, "1", doc.Subjects[0].Position)
	})

	t.Run("overall totals average and fallback grade", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return nil, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "English", TotalScore: score(70), Grade: "B", Criteria: "Exam", Score: 70, MaximumScore: 100},
					{Course: "Mathematics", TotalScore: score(80), Grade: "B", Criteria: "Exam", Score: 80, MaximumScore: 100},
				}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Equal(t, 150.0, doc.TotalMarksObtained)
		assert.Equal(t, 200.0, doc.TotalMaxMarks)
		require.NotNil(t, doc.TermAverage)
		assert.Equal(t, 75.0, *doc.TermAverage)
		assert.Equal(t, "B", doc.OverallGrade)
	})

	t.Run("zero max marks leaves average unset", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return nil, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "English", TotalScore: score(0), Grade: "", Criteria: "Exam", Score: 0, MaximumScore: 0},
				}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Nil(t, doc.TermAverage)
		assert.Empty(t, doc.OverallGrade)
	})

	t.Run("grade lookup failure downgrades to N/A", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return nil, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "English", TotalScore: score(70), Grade: "B", Criteria: "Exam", Score: 70, MaximumScore: 100},
				}, nil
			},
			GradingScaleFunc: func(ctx context.Context) ([]models.GradeBand, error) {
				return nil, errors.New("settings table corrupted")
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Equal(t, "N/A", doc.OverallGrade)
	})

	t.Run("group and program rank positions", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FindStudentGroupsFunc: func(ctx context.Context, studentID string) ([]string, error) {
				return []string{"JSS1-A"}, nil
			},
			CountGroupStudentsFunc: func(ctx context.Context, groupID string) (int, error) {
				return 3, nil
			},
			GroupProgramFunc: func(ctx context.Context, groupID string) (string, error) {
				return "Junior Secondary", nil
			},
			CountProgramEnrollmentsFunc: func(ctx context.Context, program, year, term string) (int, error) {
				return 90, nil
			},
			FetchAssessmentDetailsFunc: func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
				return []models.AssessmentDetailRow{
					{Course: "Mathematics", TotalScore: score(80), Grade: "B", Criteria: "Exam", Score: 80, MaximumScore: 100},
				}, nil
			},
			FetchGroupTotalsFunc: func(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
				return []models.StudentTotal{
					{Student: "STU-002", Total: 90},
					{Student: "STU-003", Total: 90},
					{Student: "STU-001", Total: 80},
				}, nil
			},
			FetchProgramTotalsFunc: func(ctx context.Context, program, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
				assert.Equal(t, "Junior Secondary", program)
				return []models.StudentTotal{
					{Student: "STU-002", Total: 90},
					{Student: "STU-001", Total: 80},
				}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		doc := stub()
		_, err := svc.PopulateStudentResult(ctx, doc)

		assert.NoError(t, err)
		assert.Equal(t, 3, doc.GroupSize)
		assert.Equal(t, 90, doc.ProgramCohortSize)
		require.NotNil(t, doc.GroupPosition)
		assert.Equal(t, 3, *doc.GroupPosition)
		require.NotNil(t, doc.ProgramPosition)
		assert.Equal(t, 2, *doc.ProgramPosition)
	})

	t.Run("tied group totals share the rank", func(t *testing.T) {
		totals := []models.StudentTotal{
			{Student: "STU-001", Total: 90},
			{Student: "STU-002", Total: 90},
			{Student: "STU-003", Total: 80},
		}

		assert.Equal(t, 1, totalsRank(totals, 90))
		assert.Equal(t, 3, totalsRank(totals, 80))
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			GetAcademicTermFunc: func(ctx context.Context, id string) (models.AcademicTerm, error) {
				return models.AcademicTerm{}, errors.New("database connection failed")
			},
		}

		svc := NewResultService(mockRepo, logger)
		_, err := svc.PopulateStudentResult(ctx, stub())

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "database connection failed")
	})
}

// TestCompetitionRank verifies tie handling of the rank computation.
func TestCompetitionRank(t *testing.T) {
	scores := []float64{90, 90, 80}

	assert.Equal(t, 1, competitionRank(scores, 90))
	assert.Equal(t, 3, competitionRank(scores, 80))
	assert.Equal(t, 1, competitionRank(nil, 50))
}

// TestGetGroupRanking tests the ranking overview
func TestGetGroupRanking(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("ranks with shared positions", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FetchGroupTotalsFunc: func(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
				return []models.StudentTotal{
					{Student: "STU-001", Total: 90},
					{Student: "STU-002", Total: 90},
					{Student: "STU-003", Total: 80},
				}, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		ranking, err := svc.GetGroupRanking(ctx, "JSS1-A", "Term 1 Assessments", "2024-2025", "Term 1")

		assert.NoError(t, err)
		require.Len(t, ranking, 3)
		assert.Equal(t, 1, ranking[0].Position)
		assert.Equal(t, 1, ranking[1].Position)
		assert.Equal(t, 3, ranking[2].Position)
	})

	t.Run("empty group", func(t *testing.T) {
		mockRepo := &mocks.MockTermResultRepository{
			FetchGroupTotalsFunc: func(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
				return nil, nil
			},
		}

		svc := NewResultService(mockRepo, logger)
		_, err := svc.GetGroupRanking(ctx, "JSS1-A", "Term 1 Assessments", "2024-2025", "Term 1")

		assert.ErrorIs(t, err, ErrNoGroupResults)
	})
}
