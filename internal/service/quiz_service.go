package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/util"

	"gorm.io/gorm"
)

const maxRecommendations = 3

const (
	QuestionTechnical    = 1
	QuestionInterest     = 2
	QuestionAvailability = 3
	QuestionGoal         = 4
)

var onboardingQuestions = []model.QuizQuestion{
	{
		ID:       QuestionTechnical,
		Question: "What is your current experience with computers?",
		Options: []string{
			"Complete beginner",
			"Basic usage (email, browsing)",
			"Intermediate (office software)",
			"Advanced user",
		},
		Category: "technical",
	},
	{
		ID:       QuestionInterest,
		Question: "Which digital skill interests you most?",
		Options: []string{
			"Basic computer literacy",
			"Digital marketing",
			"Data entry & analysis",
			"Online business skills",
		},
		Category: "interest",
	},
	{
		ID:       QuestionAvailability,
		Question: "How much time can you dedicate to learning daily?",
		Options: []string{
			"10-15 minutes",
			"30 minutes",
			"1 hour",
			"More than 1 hour",
		},
		Category: "availability",
	},
	{
		ID:       QuestionGoal,
		Question: "What is your primary goal?",
		Options: []string{
			"Find employment",
			"Start a business",
			"Improve current job",
			"Personal development",
		},
		Category: "goal",
	},
}

const (
	reasonSkillLevel = "Perfect for your current skill level"
	reasonInterests  = "Matches your interests"
	reasonEmployment = "Essential for job applications"
	reasonBusiness   = "Great for starting a business"
	reasonFallback   = "Recommended for skill development"
)

type QuizService struct {
	DB         *gorm.DB
	QuizRepo   *repository.QuizRepository
	UserRepo   *repository.UserRepository
	CourseRepo *repository.CourseRepository
}

func NewQuizService(
	db *gorm.DB,
	quizRepo *repository.QuizRepository,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
) *QuizService {
	return &QuizService{
		DB:         db,
		QuizRepo:   quizRepo,
		UserRepo:   userRepo,
		CourseRepo: courseRepo,
	}
}

// Questions 返回入门测验题目（副本）
func (s *QuizService) Questions() []model.QuizQuestion {
	out := make([]model.QuizQuestion, len(onboardingQuestions))
	for i, q := range onboardingQuestions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

func knownQuestion(id int) bool {
	for _, q := range onboardingQuestions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// aptitudeFrom classifies the answer to the technical question.
func aptitudeFrom(answer string) string {
	a := strings.ToLower(answer)
	switch {
	case strings.Contains(a, "beginner"):
		return model.AptitudeBeginner
	case strings.Contains(a, "basic"):
		return model.AptitudeBasic
	case strings.Contains(a, "intermediate"):
		return model.AptitudeIntermediate
	default:
		return model.AptitudeAdvanced
	}
}

// SubmitQuiz replaces all stored answers of the user and rewrites the
// profile tag derived from them.
func (s *QuizService) SubmitQuiz(ctx context.Context, userID uint, answers map[int]string) (*model.ProfileTag, error) {
	if len(answers) == 0 {
		return nil, util.Validationf("responses must not be empty")
	}

	ids := make([]int, 0, len(answers))
	for id := range answers {
		if !knownQuestion(id) {
			return nil, util.Validationf("unknown question %d", id)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	responses := make([]model.QuizResponse, 0, len(ids))
	for _, id := range ids {
		responses = append(responses, model.QuizResponse{
			UserID:     userID,
			QuestionID: id,
			Response:   answers[id],
		})
	}

	tag := model.ProfileTag{
		AptitudeLevel:  aptitudeFrom(answers[QuestionTechnical]),
		Interests:      answers[QuestionInterest],
		TimeCommitment: answers[QuestionAvailability],
		Goals:          answers[QuestionGoal],
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := s.UserRepo.WithTx(tx)
		if _, err := userRepo.FindByID(userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NotFoundf("user %d", userID)
			}
			return util.StorageErr("find user", err)
		}
		if err := s.QuizRepo.WithTx(tx).ReplaceResponses(userID, responses); err != nil {
			return util.StorageErr("replace quiz responses", err)
		}
		if err := userRepo.UpdateProfileTag(userID, tag); err != nil {
			return util.StorageErr("update profile tag", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Recommend picks at most three active courses for the user's profile tag.
func (s *QuizService) Recommend(ctx context.Context, userID uint) ([]model.CourseRecommendation, error) {
	db := s.DB.WithContext(ctx)

	user, err := s.UserRepo.WithTx(db).FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NotFoundf("user %d", userID)
	}
	if err != nil {
		return nil, util.StorageErr("find user", err)
	}

	novice := user.AptitudeLevel == model.AptitudeBeginner || user.AptitudeLevel == model.AptitudeBasic

	var courses []model.Course
	if novice {
		courses, err = s.CourseRepo.WithTx(db).FindActiveByDifficulty(model.Beginner)
	} else {
		courses, err = s.CourseRepo.WithTx(db).FindActiveByTier()
	}
	if err != nil {
		return nil, util.StorageErr("recommend courses", err)
	}

	if len(courses) > maxRecommendations {
		courses = courses[:maxRecommendations]
	}

	out := make([]model.CourseRecommendation, 0, len(courses))
	for _, c := range courses {
		out = append(out, model.CourseRecommendation{
			CourseID:          c.ID,
			CourseName:        c.Name,
			Description:       c.Description,
			Difficulty:        c.Difficulty,
			RecommendedReason: recommendationReason(c.Name, user.Interests, user.Goals, novice),
		})
	}
	return out, nil
}

func recommendationReason(courseName, interests, goals string, novice bool) string {
	var reasons []string
	name := strings.ToLower(courseName)

	if novice {
		reasons = append(reasons, reasonSkillLevel)
	}

	for _, word := range strings.Fields(strings.ToLower(interests)) {
		if strings.Contains(name, word) {
			reasons = append(reasons, reasonInterests)
			break
		}
	}

	g := strings.ToLower(goals)
	switch {
	case strings.Contains(g, "employment") && strings.Contains(name, "literacy"):
		reasons = append(reasons, reasonEmployment)
	case strings.Contains(g, "business") && strings.Contains(name, "marketing"):
		reasons = append(reasons, reasonBusiness)
	}

	if len(reasons) == 0 {
		return reasonFallback
	}
	return strings.Join(reasons, "; ")
}
