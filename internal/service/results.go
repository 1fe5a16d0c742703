package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Tim1119/school-results-server/internal/repository"
	"github.com/Tim1119/school-results-server/internal/repository/models"
	"go.uber.org/zap"
)

// ResultService builds School Term Result records from assessment data.
type ResultService struct {
	storage TermResultRepository
	logger  *zap.Logger
}

// NewResultService creates a new ResultService instance.
func NewResultService(storage TermResultRepository, logger *zap.Logger) *ResultService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &ResultService{
		storage: storage,
		logger:  logger,
	}
}

var (
	ErrConfigNotFound  = errors.New("generator config not found")
	ErrMissingFilters  = errors.New("assessment group, academic year, academic term and student group are required")
	ErrNoGroupResults  = errors.New("no assessment results found for group")
	ErrUnknownCriteria = errors.New("assessment criteria not configured")
	ErrStorageFailure  = errors.New("storage failure")
)

// GenerateClassResults creates and persists one term result per student in
// the configured group. Each record is committed before moving to the next
// student, so a mid-batch failure leaves prior results durable. Re-running
// for an already-processed group inserts a second record per student; no
// duplicate check is performed.
func (s *ResultService) GenerateClassResults(ctx context.Context, configID string) (GenerateSummary, error) {
	cfg, err := s.storage.GetGeneratorConfig(ctx, configID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return GenerateSummary{}, fmt.Errorf("%w: %q", ErrConfigNotFound, configID)
		}
		return GenerateSummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if cfg.AssessmentGroup == "" || cfg.AcademicYear == "" || cfg.AcademicTerm == "" || cfg.StudentGroup == "" {
		return GenerateSummary{}, ErrMissingFilters
	}

	students, err := s.storage.ListGroupStudents(ctx, cfg.StudentGroup)
	if err != nil {
		return GenerateSummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	summary := GenerateSummary{StudentGroup: cfg.StudentGroup}

	if len(students) == 0 {
		summary.Notices = append(summary.Notices, fmt.Sprintf("No students found in %s", cfg.StudentGroup))
		s.logger.Info("batch generation skipped, empty group", zap.String("group", cfg.StudentGroup))
		return summary, nil
	}

	for _, studentID := range students {
		result := &models.TermResult{
			Student:         studentID,
			AssessmentGroup: cfg.AssessmentGroup,
			AcademicYear:    cfg.AcademicYear,
			AcademicTerm:    cfg.AcademicTerm,
		}

		notices, err := s.PopulateStudentResult(ctx, result)
		if err != nil {
			return summary, fmt.Errorf("populate result for %s: %w", studentID, err)
		}
		summary.Notices = append(summary.Notices, notices...)

		if err := s.storage.InsertTermResult(ctx, result); err != nil {
			return summary, fmt.Errorf("%w: insert result for %s: %v", ErrStorageFailure, studentID, err)
		}
		summary.GeneratedCount++
	}

	s.logger.Info("batch generation completed",
		zap.String("group", cfg.StudentGroup),
		zap.Int("generated", summary.GeneratedCount))

	return summary, nil
}

// PopulateStudentResult fills every derived field of the given result stub
// in place. The stub must carry student, assessment group, academic year and
// academic term; the caller is responsible for persistence.
//
// Missing reference data (no group membership, no assessment results, no
// classmates, no program) never fails the operation: the affected fields are
// left at their zero values and a notice is collected instead.
func (s *ResultService) PopulateStudentResult(ctx context.Context, doc *models.TermResult) ([]string, error) {
	var notices []string

	term, err := s.storage.GetAcademicTerm(ctx, doc.AcademicTerm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	doc.TermStartDate = term.StartDate
	doc.TermEndDate = term.EndDate

	student, err := s.storage.GetStudent(ctx, doc.Student)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	doc.Gender = student.Gender
	doc.StudentAdmissionID = student.ID

	var program string
	groups, err := s.storage.FindStudentGroups(ctx, doc.Student)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(groups) > 0 {
		doc.StudentGroup = groups[0]

		doc.GroupSize, err = s.storage.CountGroupStudents(ctx, doc.StudentGroup)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}

		program, err = s.storage.GroupProgram(ctx, doc.StudentGroup)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}

		doc.ProgramCohortSize, err = s.storage.CountProgramEnrollments(ctx, program, doc.AcademicYear, doc.AcademicTerm)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	} else {
		notices = s.notice(notices, "No student group found for %s", doc.Student)
	}

	details, err := s.storage.FetchAssessmentDetails(ctx, doc.Student, doc.AcademicYear, doc.AcademicTerm, doc.AssessmentGroup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	doc.Subjects = []models.SubjectEntry{}
	doc.Components = []models.AssessmentComponent{}

	if len(details) == 0 {
		notices = s.notice(notices, "No assessment results found for student %s", doc.Student)
		return notices, nil
	}

	s.buildSubjectsAndComponents(doc, details)

	if err := s.applyClassStatistics(ctx, doc); err != nil {
		return nil, err
	}

	s.applyOverallTotals(doc)

	if doc.TermAverage != nil {
		grade, err := s.resolveOverallGrade(ctx, *doc.TermAverage)
		if err != nil {
			s.logger.Error("overall grade lookup failed",
				zap.String("student", doc.Student),
				zap.Error(err))
			grade = gradeNotApplicable
		}
		doc.OverallGrade = grade
	}

	if doc.StudentGroup != "" {
		if err := s.applyRankPositions(ctx, doc, program); err != nil {
			return nil, err
		}
	}

	return notices, nil
}

// buildSubjectsAndComponents groups the ordered detail rows by course into
// one subject entry per course (first-seen total score and grade win) and
// flattens every detail row into a component entry tagged with its course.
func (s *ResultService) buildSubjectsAndComponents(doc *models.TermResult, details []models.AssessmentDetailRow) {
	seen := make(map[string]bool)
	for _, row := range details {
		if !seen[row.Course] {
			seen[row.Course] = true
			var total float64
			if row.TotalScore != nil {
				total = *row.TotalScore
			}
			doc.Subjects = append(doc.Subjects, models.SubjectEntry{
				Subject:    row.Course,
				TotalScore: total,
				Grade:      row.Grade,
			})
		}
		doc.Components = append(doc.Components, models.AssessmentComponent{
			Criteria:      row.Criteria,
			ScoreObtained: row.Score,
			MaxScore:      row.MaximumScore,
			Subject:       row.Course,
		})
	}
}

// applyClassStatistics fills per-subject class high/low/average and the
// student's rank within the group for each subject.
func (s *ResultService) applyClassStatistics(ctx context.Context, doc *models.TermResult) error {
	if doc.StudentGroup == "" {
		return nil
	}
	for i := range doc.Subjects {
		subject := &doc.Subjects[i]
		if subject.Subject == "" {
			continue
		}

		scores, err := s.storage.FetchClassScores(ctx, doc.StudentGroup, subject.Subject,
			doc.AssessmentGroup, doc.AcademicTerm, doc.AcademicYear)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if len(scores) == 0 {
			continue
		}

		high, low, sum := scores[0], scores[0], 0.0
		for _, v := range scores {
			if v > high {
				high = v
			}
			if v < low {
				low = v
			}
			sum += v
		}
		subject.ClassHighestScore = high
		subject.ClassLowestScore = low
		subject.ClassAverageScore = round2(sum / float64(len(scores)))
		subject.Position = strconv.Itoa(competitionRank(scores, subject.TotalScore))
	}
	return nil
}

func (s *ResultService) applyOverallTotals(doc *models.TermResult) {
	var total float64
	for _, subject := range doc.Subjects {
		total += subject.TotalScore
	}
	doc.TotalMarksObtained = total

	var max float64
	for _, component := range doc.Components {
		max += component.MaxScore
	}
	doc.TotalMaxMarks = max

	if max > 0 {
		avg := round2(total / max * 100)
		doc.TermAverage = &avg
	}
}

// applyRankPositions computes the group-local rank and, when the group has a
// resolvable program, the program-wide rank over submitted enrollments.
func (s *ResultService) applyRankPositions(ctx context.Context, doc *models.TermResult, program string) error {
	groupTotals, err := s.storage.FetchGroupTotals(ctx, doc.StudentGroup,
		doc.AssessmentGroup, doc.AcademicTerm, doc.AcademicYear)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(groupTotals) > 0 {
		pos := totalsRank(groupTotals, doc.TotalMarksObtained)
		doc.GroupPosition = &pos
	}

	if program == "" {
		return nil
	}

	programTotals, err := s.storage.FetchProgramTotals(ctx, program,
		doc.AssessmentGroup, doc.AcademicTerm, doc.AcademicYear)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(programTotals) > 0 {
		pos := totalsRank(programTotals, doc.TotalMarksObtained)
		doc.ProgramPosition = &pos
	}
	return nil
}

// GetGroupRanking returns the ranked per-student total sums for a group.
func (s *ResultService) GetGroupRanking(ctx context.Context, groupID, assessmentGroup, year, term string) ([]RankedStudent, error) {
	totals, err := s.storage.FetchGroupTotals(ctx, groupID, assessmentGroup, term, year)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(totals) == 0 {
		return nil, ErrNoGroupResults
	}

	ranking := make([]RankedStudent, len(totals))
	for i, t := range totals {
		ranking[i] = RankedStudent{
			Student:  t.Student,
			Total:    t.Total,
			Position: totalsRank(totals, t.Total),
		}
	}
	return ranking, nil
}

// competitionRank is 1 plus the number of scores strictly above the
// student's score. Ties share the lower rank number.
func competitionRank(scores []float64, score float64) int {
	rank := 1
	for _, v := range scores {
		if v > score {
			rank++
		}
	}
	return rank
}

func totalsRank(totals []models.StudentTotal, total float64) int {
	rank := 1
	for _, t := range totals {
		if t.Total > total {
			rank++
		}
	}
	return rank
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *ResultService) notice(notices []string, format string, args ...any) []string {
	msg := fmt.Sprintf(format, args...)
	s.logger.Info(msg)
	return append(notices, msg)
}
