package authoring

import (
	"context"
	"testing"

	"academy/apperr"
	"academy/models"
	"academy/models/course"
	"academy/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse_AlwaysDraft(t *testing.T) {
	db := testutil.NewTestDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)

	c, err := NewService(db).CreateCourse(context.Background(), *instructor, CourseInput{Title: "Servant Leadership", Price: 4900})
	require.NoError(t, err)
	assert.Equal(t, course.StatusDraft, c.Status)
	assert.Nil(t, c.PublishedAt)
	assert.Equal(t, instructor.ID, c.InstructorID)
	assert.Contains(t, c.Slug, "servant-leadership")

	_, err = NewService(db).CreateCourse(context.Background(), *instructor, CourseInput{Title: "x", Price: -1})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestAddModuleAndLesson_OrderIndexes(t *testing.T) {
	db := testutil.NewTestDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)
	svc := NewService(db)
	ctx := context.Background()
	c, err := svc.CreateCourse(ctx, *instructor, CourseInput{Title: "Course"})
	require.NoError(t, err)

	m1, err := svc.AddModule(ctx, *instructor, c.ID, ModuleInput{Title: "One"})
	require.NoError(t, err)
	m2, err := svc.AddModule(ctx, *instructor, c.ID, ModuleInput{Title: "Two", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, 1, m1.OrderIndex)
	assert.Equal(t, 2, m2.OrderIndex)
	assert.True(t, m2.IsPublished)

	l1, err := svc.AddLesson(ctx, *instructor, m1.ID, LessonInput{Title: "Intro"})
	require.NoError(t, err)
	l2, err := svc.AddLesson(ctx, *instructor, m1.ID, LessonInput{Title: "Next"})
	require.NoError(t, err)
	assert.Equal(t, 1, l1.OrderIndex)
	assert.Equal(t, 2, l2.OrderIndex)

	m1, err = svc.SetModulePublished(ctx, *instructor, m1.ID, true)
	require.NoError(t, err)
	assert.True(t, m1.IsPublished)
}

func TestOwnership(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)
	other := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)
	admin := testutil.SeedUser(t, db, models.RoleAdmin, models.SubscriptionNone)
	c := testutil.SeedCourse(t, db, owner.ID, 0, course.StatusDraft)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.AddModule(ctx, *other, c.ID, ModuleInput{Title: "Hijack"})
	assert.ErrorIs(t, err, apperr.ErrNotCourseOwner)

	_, err = svc.AddModule(ctx, *admin, c.ID, ModuleInput{Title: "Admin fix"})
	assert.NoError(t, err)

	_, err = svc.AddModule(ctx, *owner, 999, ModuleInput{Title: "Nowhere"})
	assert.ErrorIs(t, err, apperr.ErrCourseNotFound)

	_, err = svc.AddLesson(ctx, *owner, 999, LessonInput{Title: "Nowhere"})
	assert.ErrorIs(t, err, apperr.ErrModuleNotFound)

	owned, err := svc.ListOwned(ctx, *other)
	require.NoError(t, err)
	assert.Empty(t, owned)
	all, err := svc.ListOwned(ctx, *admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddQuiz(t *testing.T) {
	db := testutil.NewTestDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)
	c := testutil.SeedCourse(t, db, instructor.ID, 0, course.StatusDraft)
	m := testutil.SeedModule(t, db, c.ID, true, false)
	lesson := testutil.SeedLessons(t, db, m.ID, 1)[0]
	svc := NewService(db)
	ctx := context.Background()

	in := QuizInput{
		Title:        "Check",
		PassingScore: 70,
		Questions: []QuestionInput{
			{Question: "Who led Israel out of Egypt?", Options: []string{"Moses", "David"}, CorrectAnswer: "Moses"},
			{Question: "Who wrote most psalms?", Options: []string{"Moses", "David"}, CorrectAnswer: "David"},
		},
	}
	q, err := svc.AddQuiz(ctx, *instructor, lesson.ID, in)
	require.NoError(t, err)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, []string{"Moses", "David"}, q.Questions[0].OptionList())

	_, err = svc.AddQuiz(ctx, *instructor, lesson.ID, in)
	assert.ErrorIs(t, err, apperr.ErrQuizExists)

	bad := in
	bad.Questions = []QuestionInput{{Question: "?", Options: []string{"a"}, CorrectAnswer: "b"}}
	_, err = svc.AddQuiz(ctx, *instructor, lesson.ID, bad)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	bad = in
	bad.PassingScore = 101
	_, err = svc.AddQuiz(ctx, *instructor, lesson.ID, bad)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestAddLab(t *testing.T) {
	db := testutil.NewTestDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor, models.SubscriptionNone)
	c := testutil.SeedCourse(t, db, instructor.ID, 0, course.StatusDraft)
	m := testutil.SeedModule(t, db, c.ID, true, false)
	lesson := testutil.SeedLessons(t, db, m.ID, 1)[0]
	svc := NewService(db)
	ctx := context.Background()

	lab, err := svc.AddLab(ctx, *instructor, lesson.ID, LabInput{Title: "Serve", RequiresPhoto: true, IsGraded: true, MaxPoints: 10})
	require.NoError(t, err)
	assert.True(t, lab.RequiresEvidence())

	_, err = svc.AddLab(ctx, *instructor, lesson.ID, LabInput{Title: "Nothing asked"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.AddLab(ctx, *instructor, lesson.ID, LabInput{Title: "Zero", RequiresText: true, IsGraded: true})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
