package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusworks/advisor-backend/internal/clients/openai"
	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/repos"
	"github.com/campusworks/advisor-backend/internal/types"
)

// ChatReply is one advisor answer. When the reply mentions catalog
// courses, they are re-validated and stored as a pending update for
// the student to apply explicitly; the authoritative set is untouched.
type ChatReply struct {
	Message  string                   `json:"message"`
	Proposed *types.RecommendationSet `json:"proposed,omitempty"`
}

type AdvisorChatService interface {
	Chat(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, message string) (*ChatReply, error)
}

type advisorChatService struct {
	db          *gorm.DB
	log         *logger.Logger
	studentRepo repos.StudentRepo
	courseRepo  repos.CourseRepo
	recSvc      RecommendationService
	oracle      openai.Client
	timeout     time.Duration
}

func NewAdvisorChatService(
	db *gorm.DB,
	baseLog *logger.Logger,
	studentRepo repos.StudentRepo,
	courseRepo repos.CourseRepo,
	recSvc RecommendationService,
	oracle openai.Client,
	timeout time.Duration,
) AdvisorChatService {
	serviceLog := baseLog.With("service", "AdvisorChatService")
	return &advisorChatService{
		db:          db,
		log:         serviceLog,
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
		recSvc:      recSvc,
		oracle:      oracle,
		timeout:     timeout,
	}
}

const degradedChatReply = "I can't reach the advising assistant right now. Your current recommendations are still available, and you can refresh them at any time."

const chatSystemPrompt = `You are a friendly academic advisor chatting with a student.
Answer questions about the candidate courses listed in the user message.
When you suggest specific courses, refer to them by their course code.
Suggest at most three courses and never two that meet at overlapping times.`

func (s *advisorChatService) Chat(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, message string) (*ChatReply, error) {
	students, err := s.studentRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
	if err != nil {
		return nil, fmt.Errorf("load student profile: %w", err)
	}
	if len(students) == 0 || students[0] == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrInsufficientData)
	}
	student := students[0]

	catalog, err := s.courseRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load course catalog: %w", err)
	}

	if s.oracle == nil {
		return &ChatReply{Message: degradedChatReply}, nil
	}

	oracleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.oracle.GenerateText(oracleCtx, chatSystemPrompt, buildChatPrompt(student, catalog, message))
	if err != nil {
		// Chat never surfaces oracle failures as hard errors.
		s.log.Warn("Advisor chat oracle unavailable", "error", err)
		return &ChatReply{Message: degradedChatReply}, nil
	}

	out := &ChatReply{Message: reply}

	// Conversational extraction: catalog codes mentioned in the reply
	// become a pending update, subject to the usual validation.
	codes := extractCourseCodes(reply, catalog, types.MaxRecommendations)
	if len(codes) > 0 {
		proposed, err := s.recSvc.ProposeCourses(ctx, tx, studentID, codes)
		if err != nil {
			s.log.Warn("Chat-suggested courses rejected as pending update", "error", err, "codes", codes)
		} else {
			out.Proposed = proposed
		}
	}
	return out, nil
}

func buildChatPrompt(student *types.StudentProfile, catalog []*types.Course, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student: career goal %s, level %s, preferred subjects %s.\n",
		student.CareerGoal, student.ProficiencyLevel(), strings.Join(types.StringList(student.PreferredSubjects), ", "))
	fmt.Fprintf(&b, "Candidate courses:\n")
	for _, c := range catalog {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", c.Code, c.Title, c.Subject)
	}
	fmt.Fprintf(&b, "\nStudent message: %s\n", message)
	return b.String()
}

// extractCourseCodes scans free text for known catalog codes,
// preserving first-mention order, up to the given limit.
func extractCourseCodes(text string, catalog []*types.Course, limit int) []string {
	var codes []string
	seen := make(map[string]bool)
	for _, c := range catalog {
		if c.Code == "" || seen[c.Code] {
			continue
		}
		if strings.Contains(text, c.Code) {
			seen[c.Code] = true
			codes = append(codes, c.Code)
		}
	}
	if len(codes) <= 1 {
		return codes
	}
	// Order by first appearance in the reply.
	sortByPosition(codes, text)
	if len(codes) > limit {
		codes = codes[:limit]
	}
	return codes
}

func sortByPosition(codes []string, text string) {
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && strings.Index(text, codes[j]) < strings.Index(text, codes[j-1]); j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
}
