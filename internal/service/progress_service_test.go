package service

import (
	"context"
	"sync"
	"testing"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/testutil"
	"skillbridge_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEnrollment(t *testing.T, env *testEnv, userID, courseID uint) model.Enrollment {
	t.Helper()
	var e model.Enrollment
	require.NoError(t, env.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error)
	return e
}

func TestEnroll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")

	e, err := env.progress.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, e.ProgressPercentage)
	assert.Nil(t, e.CompletedAt)

	_, err = env.progress.Enroll(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	_, err = env.progress.Enroll(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCompleteLesson_ProgressReachesExactly100(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	lessons := testutil.LessonsOf(t, env.db, course.ID)
	require.Len(t, lessons, 4)

	_, err := env.progress.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)

	want := []float64{25, 50, 75}
	for i, l := range lessons[:3] {
		res, err := env.progress.CompleteLesson(ctx, user.ID, l.ID, CompletionInput{})
		require.NoError(t, err)
		assert.Equal(t, want[i], res.ProgressPercentage)
		assert.Nil(t, res.CompletedAt)
	}

	e := findEnrollment(t, env, user.ID, course.ID)
	assert.Less(t, e.ProgressPercentage, 100.0)
	assert.Nil(t, e.CompletedAt)

	spent, score := 15, 92.5
	res, err := env.progress.CompleteLesson(ctx, user.ID, lessons[3].ID, CompletionInput{TimeSpentMinutes: &spent, Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.ProgressPercentage)
	assert.NotNil(t, res.CompletedAt)

	e = findEnrollment(t, env, user.ID, course.ID)
	assert.Equal(t, 100.0, e.ProgressPercentage)
	assert.NotNil(t, e.CompletedAt)

	var rec model.ProgressRecord
	require.NoError(t, env.db.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[3].ID).First(&rec).Error)
	require.NotNil(t, rec.TimeSpentMinutes)
	assert.Equal(t, 15, *rec.TimeSpentMinutes)
	require.NotNil(t, rec.Score)
	assert.Equal(t, 92.5, *rec.Score)
}

func TestCompleteLesson_TwiceFailsWithoutChangingProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Digital Marketing Essentials")
	lessons := testutil.LessonsOf(t, env.db, course.ID)

	_, err := env.progress.CompleteLesson(ctx, user.ID, lessons[0].ID, CompletionInput{})
	require.NoError(t, err)
	before := findEnrollment(t, env, user.ID, course.ID)
	assert.Equal(t, 50.0, before.ProgressPercentage)

	_, err = env.progress.CompleteLesson(ctx, user.ID, lessons[0].ID, CompletionInput{})
	assert.ErrorIs(t, err, util.ErrAlreadyCompleted)

	after := findEnrollment(t, env, user.ID, course.ID)
	assert.Equal(t, before.ProgressPercentage, after.ProgressPercentage)
	assert.Equal(t, before.CompletedAt, after.CompletedAt)

	var count int64
	require.NoError(t, env.db.Model(&model.ProgressRecord{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompleteLesson_CreatesMissingEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")
	lessons := testutil.LessonsOf(t, env.db, course.ID)

	res, err := env.progress.CompleteLesson(ctx, user.ID, lessons[0].ID, CompletionInput{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.ProgressPercentage)

	e := findEnrollment(t, env, user.ID, course.ID)
	assert.NotNil(t, e.CompletedAt)

	// 自动创建的报名与显式报名等价
	_, err = env.progress.Enroll(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	views, err := env.progress.ListEnrollments(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, course.ID, views[0].CourseID)
	assert.Equal(t, 100.0, views[0].ProgressPercentage)
}

func TestCompleteLesson_ParallelDistinctLessonsReach100(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	lessons := testutil.LessonsOf(t, env.db, course.ID)
	require.Len(t, lessons, 4)

	_, err := env.progress.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)

	errs := make([]error, len(lessons))
	var wg sync.WaitGroup
	for i, l := range lessons {
		wg.Add(1)
		go func(i int, lessonID uint) {
			defer wg.Done()
			_, errs[i] = env.progress.CompleteLesson(ctx, user.ID, lessonID, CompletionInput{})
		}(i, l.ID)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "lesson %d", i)
	}

	e := findEnrollment(t, env, user.ID, course.ID)
	assert.Equal(t, 100.0, e.ProgressPercentage)
	assert.NotNil(t, e.CompletedAt)
}

func TestCompleteLesson_ParallelSameLessonCompletesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	lessons := testutil.LessonsOf(t, env.db, course.ID)

	_, err := env.progress.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.progress.CompleteLesson(ctx, user.ID, lessons[0].ID, CompletionInput{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, util.ErrAlreadyCompleted)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, env.db.Model(&model.ProgressRecord{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	e := findEnrollment(t, env, user.ID, course.ID)
	assert.Equal(t, 25.0, e.ProgressPercentage)
	assert.Nil(t, e.CompletedAt)
}

func TestCompleteLesson_UnknownLesson(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "u", "U")

	_, err := env.progress.CompleteLesson(context.Background(), user.ID, 9999, CompletionInput{})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestProgressOf_RoundsToTwoDecimals(t *testing.T) {
	assert.Equal(t, 33.33, progressOf(1, 3))
	assert.Equal(t, 66.67, progressOf(2, 3))
	assert.Equal(t, 100.0, progressOf(3, 3))
	assert.Equal(t, 0.0, progressOf(0, 0))
}

func TestListLessons_CompletionFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	lessons := testutil.LessonsOf(t, env.db, course.ID)

	_, err := env.progress.CompleteLesson(ctx, user.ID, lessons[1].ID, CompletionInput{})
	require.NoError(t, err)

	got, err := env.courses.ListLessons(ctx, course.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, l := range got {
		assert.Equal(t, i+1, l.OrderIndex)
		assert.Equal(t, i == 1, l.IsCompleted, "lesson %d", i)
	}

	_, err = env.courses.ListLessons(ctx, 9999, user.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestListCourses_ActiveByName(t *testing.T) {
	env := newTestEnv(t)
	courses, err := env.courses.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 6)
	for i := 1; i < len(courses); i++ {
		assert.Less(t, courses[i-1].Name, courses[i].Name)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	literacy := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	marketing := testutil.CourseByName(t, env.db, "Digital Marketing Essentials")

	empty, err := env.dashboard.GetUserDashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Enrollments)
	assert.NotNil(t, empty.RecentActivity)
	assert.Zero(t, empty.Stats.TotalCourses)

	_, err = env.progress.Enroll(ctx, user.ID, marketing.ID)
	require.NoError(t, err)
	for _, l := range testutil.LessonsOf(t, env.db, literacy.ID) {
		_, err := env.progress.CompleteLesson(ctx, user.ID, l.ID, CompletionInput{})
		require.NoError(t, err)
	}
	for _, l := range testutil.LessonsOf(t, env.db, marketing.ID) {
		_, err := env.progress.CompleteLesson(ctx, user.ID, l.ID, CompletionInput{})
		require.NoError(t, err)
	}
	_, err = env.certificates.Issue(ctx, user.ID, literacy.ID)
	require.NoError(t, err)

	d, err := env.dashboard.GetUserDashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.TotalCourses)
	assert.Equal(t, 2, d.Stats.CompletedCourses)
	assert.Equal(t, 1, d.Stats.CertificatesCount)
	assert.Len(t, d.RecentActivity, recentActivityLimit)
	assert.Len(t, d.Certificates, 1)
}
