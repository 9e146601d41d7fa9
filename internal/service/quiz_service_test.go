package service

import (
	"context"
	"testing"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/testutil"
	"skillbridge_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestions_Catalog(t *testing.T) {
	env := newTestEnv(t)
	qs := env.quiz.Questions()
	require.Len(t, qs, 4)
	assert.Equal(t, []string{"technical", "interest", "availability", "goal"},
		[]string{qs[0].Category, qs[1].Category, qs[2].Category, qs[3].Category})

	qs[0].Options[0] = "mutated"
	assert.Equal(t, "Complete beginner", env.quiz.Questions()[0].Options[0])
}

func TestSubmitQuiz_BeginnerGetsBeginnerCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")

	tag, err := env.quiz.SubmitQuiz(ctx, user.ID, map[int]string{
		1: "Complete beginner",
		2: "Digital marketing",
		3: "30 minutes",
		4: "Start a business",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AptitudeBeginner, tag.AptitudeLevel)
	assert.Equal(t, "Digital marketing", tag.Interests)

	recs, err := env.quiz.Recommend(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 3)
	for _, r := range recs {
		assert.Equal(t, model.Beginner, r.Difficulty)
	}

	assert.Equal(t, "Computer Fundamentals", recs[0].CourseName)
	assert.Equal(t, "Perfect for your current skill level", recs[0].RecommendedReason)
	assert.Equal(t, "Digital Literacy Basics", recs[1].CourseName)
	assert.Equal(t, "Perfect for your current skill level; Matches your interests", recs[1].RecommendedReason)
}

func TestSubmitQuiz_ReplacesPreviousAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")

	_, err := env.quiz.SubmitQuiz(ctx, user.ID, map[int]string{1: "Complete beginner", 2: "x", 3: "y", 4: "z"})
	require.NoError(t, err)
	_, err = env.quiz.SubmitQuiz(ctx, user.ID, map[int]string{1: "Advanced user", 4: "Find employment"})
	require.NoError(t, err)

	var rows []model.QuizResponse
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Order("question_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Advanced user", rows[0].Response)
	assert.Equal(t, "Find employment", rows[1].Response)

	recs, err := env.quiz.Recommend(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	// 非新手：按难度层级再按 id 排序
	assert.Equal(t, "Digital Literacy Basics", recs[0].CourseName)
	assert.Equal(t, "Essential for job applications", recs[0].RecommendedReason)
	assert.Equal(t, "Computer Fundamentals", recs[1].CourseName)
	assert.Equal(t, "Recommended for skill development", recs[1].RecommendedReason)
}

func TestSubmitQuiz_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")

	_, err := env.quiz.SubmitQuiz(ctx, user.ID, map[int]string{})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.quiz.SubmitQuiz(ctx, user.ID, map[int]string{7: "?"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.quiz.SubmitQuiz(ctx, 9999, map[int]string{1: "Advanced user"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.quiz.Recommend(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestAptitudeFrom(t *testing.T) {
	assert.Equal(t, model.AptitudeBeginner, aptitudeFrom("Complete beginner"))
	assert.Equal(t, model.AptitudeBasic, aptitudeFrom("Basic usage (email, browsing)"))
	assert.Equal(t, model.AptitudeIntermediate, aptitudeFrom("Intermediate (office software)"))
	assert.Equal(t, model.AptitudeAdvanced, aptitudeFrom("Advanced user"))
	assert.Equal(t, model.AptitudeAdvanced, aptitudeFrom(""))
}

func TestRecommendationReason(t *testing.T) {
	assert.Equal(t, "Great for starting a business",
		recommendationReason("Digital Marketing Essentials", "", "Start a business", false))
	assert.Equal(t, "Matches your interests; Great for starting a business",
		recommendationReason("Digital Marketing Essentials", "Digital marketing", "Start a business", false))
	assert.Equal(t, "Recommended for skill development",
		recommendationReason("Online Business Skills", "", "", false))
}
