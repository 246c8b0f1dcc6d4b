package quiz

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"academy/apperr"
	"academy/models"
	"academy/models/course"
	"academy/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuiz(t *testing.T, passing int, correct ...string) (*gorm.DB, *models.User, *course.Quiz) {
	t.Helper()
	db := testutil.NewTestDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)
	learner := testutil.SeedUser(t, db, models.RoleLearner, models.SubscriptionNone)
	c := testutil.SeedCourse(t, db, instructor.ID, 0, course.StatusPublished)
	m := testutil.SeedModule(t, db, c.ID, true, false)
	lessons := testutil.SeedLessons(t, db, m.ID, 1)
	return db, learner, testutil.SeedQuiz(t, db, lessons[0].ID, passing, correct...)
}

func key(q course.QuizQuestion) string { return strconv.FormatUint(uint64(q.ID), 10) }

func TestSubmit_TwoOfThreeFailsAtSeventy(t *testing.T) {
	db, learner, q := seedQuiz(t, 70, "Moses", "David", "Paul")
	g := NewGrader(db)

	res, err := g.Submit(context.Background(), learner.ID, q.ID, Answers{
		key(q.Questions[0]): "Moses",
		key(q.Questions[1]): "David",
		key(q.Questions[2]): "Peter",
	})
	require.NoError(t, err)
	assert.Equal(t, 67, res.Score)
	assert.False(t, res.Passed)
	assert.Equal(t, 67, res.Attempt.Score)
	assert.False(t, res.Attempt.Passed)
}

func TestSubmit_AllCorrectPasses(t *testing.T) {
	db, learner, q := seedQuiz(t, 70, "Moses", "David", "Paul")
	g := NewGrader(db)

	res, err := g.Submit(context.Background(), learner.ID, q.ID, Answers{
		key(q.Questions[0]): "Moses",
		key(q.Questions[1]): "David",
		key(q.Questions[2]): "Paul",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)

	var stored course.QuizAttempt
	require.NoError(t, db.First(&stored, res.Attempt.ID).Error)
	var answers map[string]string
	require.NoError(t, json.Unmarshal(stored.Answers, &answers))
	assert.Equal(t, "Paul", answers[key(q.Questions[2])])
}

func TestSubmit_UnansweredCountsAsWrong(t *testing.T) {
	db, learner, q := seedQuiz(t, 50, "A", "B")
	g := NewGrader(db)

	res, err := g.Submit(context.Background(), learner.ID, q.ID, Answers{key(q.Questions[0]): "A"})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Score)
	assert.True(t, res.Passed, "score equal to the threshold passes")
}

func TestSubmit_UnknownQuestionRejected(t *testing.T) {
	db, learner, q := seedQuiz(t, 70, "A")
	g := NewGrader(db)

	_, err := g.Submit(context.Background(), learner.ID, q.ID, Answers{"424242": "A"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&course.QuizAttempt{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmit_QuizNotFound(t *testing.T) {
	db, learner, _ := seedQuiz(t, 70, "A")

	_, err := NewGrader(db).Submit(context.Background(), learner.ID, 9999, Answers{})
	assert.ErrorIs(t, err, apperr.ErrQuizNotFound)
}

func TestSubmit_EveryAttemptIsKept(t *testing.T) {
	db, learner, q := seedQuiz(t, 100, "A")
	g := NewGrader(db)
	ctx := context.Background()

	_, err := g.Submit(ctx, learner.ID, q.ID, Answers{key(q.Questions[0]): "B"})
	require.NoError(t, err)
	_, err = g.Submit(ctx, learner.ID, q.ID, Answers{key(q.Questions[0]): "A"})
	require.NoError(t, err)

	attempts, err := g.Attempts(ctx, learner.ID, q.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].Passed)
	assert.False(t, attempts[1].Passed)
}

func TestSubmit_PassedIsFrozenAtGrading(t *testing.T) {
	db, learner, q := seedQuiz(t, 50, "A", "B")
	g := NewGrader(db)

	res, err := g.Submit(context.Background(), learner.ID, q.ID, Answers{key(q.Questions[0]): "A"})
	require.NoError(t, err)
	require.True(t, res.Passed)

	require.NoError(t, db.Model(q).Update("passing_score", 90).Error)

	var stored course.QuizAttempt
	require.NoError(t, db.First(&stored, res.Attempt.ID).Error)
	assert.True(t, stored.Passed)
}

func TestScore_IsDeterministic(t *testing.T) {
	questions := []course.QuizQuestion{{CorrectAnswer: "x"}, {CorrectAnswer: "y"}, {CorrectAnswer: "z"}}
	for i := range questions {
		questions[i].ID = uint(i + 1)
	}
	answers := Answers{"1": "x", "2": "nope", "3": "z"}

	first := Score(questions, answers)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(questions, answers))
	}
	assert.Equal(t, 67, first)
	assert.Equal(t, 0, Score(nil, answers))
}
