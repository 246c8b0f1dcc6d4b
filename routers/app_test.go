package routers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"academy/config"
	"academy/mailer"
	"academy/middleware"
	"academy/models"
	"academy/models/billing"
	"academy/models/course"
	"academy/payments"
	"academy/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	jwtKey        = "test-jwt-key"
	webhookSecret = "whsec_test"
	pngHeader     = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// fakeProvider verifies webhooks for real and records checkout requests
type fakeProvider struct {
	*payments.Client
	courses []uint
	tiers   []string
}

func (f *fakeProvider) SubscriptionCheckout(_ context.Context, _ models.User, tier string) (*payments.Session, error) {
	f.tiers = append(f.tiers, tier)
	return &payments.Session{ID: "cs_sub", URL: "https://checkout.test/cs_sub"}, nil
}

func (f *fakeProvider) CourseCheckout(_ context.Context, _ models.User, c course.Course) (*payments.Session, error) {
	f.courses = append(f.courses, c.ID)
	return &payments.Session{ID: "cs_course", URL: "https://checkout.test/cs_course"}, nil
}

type harness struct {
	t        *testing.T
	app      *fiber.App
	db       *gorm.DB
	provider *fakeProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		AppURL:              "https://academy.test",
		JWTKey:              jwtKey,
		JWTTTL:              time.Hour,
		SaltRound:           bcrypt.MinCost,
		StripeSecretKey:     "sk_test_123",
		StripeWebhookSecret: webhookSecret,
		UploadDir:           t.TempDir(),
	}
	provider := &fakeProvider{Client: payments.NewClient(cfg, nil)}
	app := NewApp(Deps{
		Config:   cfg,
		DB:       db,
		Notifier: mailer.NewSyncNotifier(mailer.LogSender{}, cfg.AppURL),
		Payments: provider,
	})
	return &harness{t: t, app: app, db: db, provider: provider}
}

func (h *harness) token(u *models.User) string {
	h.t.Helper()
	tok, err := middleware.GenerateJWT(jwtKey, time.Hour, *u)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) send(req *http.Request, token string) (int, envelope) {
	h.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(body) > 0 {
		require.NoError(h.t, json.Unmarshal(body, &env), string(body))
	}
	return resp.StatusCode, env
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return h.send(req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestAuth_SignupAndLogin(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodPost, "/auth/signup", "", fiber.Map{"name": "Ada", "email": "Ada@Example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = h.do(http.MethodPost, "/auth/signup", "", fiber.Map{"name": "Ada", "email": "ada@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, status)

	status, env := h.do(http.MethodPost, "/auth/signup", "", fiber.Map{"name": "A", "email": "nope", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(env.Data), "email")

	status, _ = h.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = h.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": "ADA@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, status)
	login := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, env)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleLearner, login.User.Role)
	assert.Equal(t, models.SubscriptionNone, login.User.SubscriptionStatus)

	status, _ = h.do(http.MethodGet, "/courses", login.Token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", decode[models.User](t, env).Email)

	status, _ = h.do(http.MethodPut, "/auth/change/login/password", login.Token, fiber.Map{
		"current_password": "password123", "new_password": "password456", "cnf_password": "password999",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(http.MethodPut, "/auth/change/login/password", login.Token, fiber.Map{
		"current_password": "wrong-password", "new_password": "password456", "cnf_password": "password456",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodPut, "/auth/change/login/password", login.Token, fiber.Map{
		"current_password": "password123", "new_password": "password456", "cnf_password": "password456",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "password456"})
	assert.Equal(t, http.StatusOK, status)
}

func TestRoutes_RequireAuth(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.db, models.RoleLearner, models.SubscriptionNone)

	status, _ := h.do(http.MethodGet, "/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodPost, "/instructor/courses", h.token(learner), fiber.Map{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(http.MethodGet, "/admin/dashboard/stats", h.token(learner), nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAuthoringApprovalAndLearning(t *testing.T) {
	h := newHarness(t)
	instructor := testutil.SeedUser(t, h.db, models.RoleInstructor, models.SubscriptionNone)
	admin := testutil.SeedUser(t, h.db, models.RoleAdmin, models.SubscriptionNone)
	learner := testutil.SeedUser(t, h.db, models.RoleLearner, models.SubscriptionNone)
	it, at, lt := h.token(instructor), h.token(admin), h.token(learner)

	status, env := h.do(http.MethodPost, "/instructor/courses", it, fiber.Map{"title": "Foundations of Faith", "price": 0})
	require.Equal(t, http.StatusCreated, status)
	crs := decode[course.Course](t, env)
	assert.Equal(t, course.StatusDraft, crs.Status)

	status, env = h.do(http.MethodPost, fmt.Sprintf("/instructor/courses/%d/modules", crs.ID), it, fiber.Map{"title": "Week 1", "is_published": true})
	require.Equal(t, http.StatusCreated, status)
	module := decode[course.Module](t, env)

	var lessons []course.Lesson
	for _, title := range []string{"Intro", "Practice"} {
		status, env = h.do(http.MethodPost, fmt.Sprintf("/instructor/modules/%d/lessons", module.ID), it, fiber.Map{"title": title})
		require.Equal(t, http.StatusCreated, status)
		lessons = append(lessons, decode[course.Lesson](t, env))
	}

	status, env = h.do(http.MethodPost, fmt.Sprintf("/instructor/lessons/%d/quiz", lessons[0].ID), it, fiber.Map{
		"title":         "Check",
		"passing_score": 50,
		"questions": []fiber.Map{
			{"question": "First?", "options": []string{"a", "b"}, "correct_answer": "a"},
			{"question": "Second?", "options": []string{"c", "d"}, "correct_answer": "d"},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	quiz := decode[course.Quiz](t, env)
	require.Len(t, quiz.Questions, 2)

	// drafts are invisible to learners
	status, _ = h.do(http.MethodPost, fmt.Sprintf("/courses/%d/enroll", crs.ID), lt, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = h.do(http.MethodGet, "/admin/courses/pending", at, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]course.Course](t, env), 1)

	status, env = h.do(http.MethodPost, fmt.Sprintf("/admin/courses/%d/approve", crs.ID), at, nil)
	require.Equal(t, http.StatusOK, status)
	approved := decode[course.Course](t, env)
	assert.Equal(t, course.StatusPublished, approved.Status)
	require.NotNil(t, approved.PublishedAt)

	status, env = h.do(http.MethodPost, fmt.Sprintf("/admin/courses/%d/approve", crs.ID), at, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, approved.PublishedAt.Equal(*decode[course.Course](t, env).PublishedAt))

	status, _ = h.do(http.MethodPost, fmt.Sprintf("/courses/%d/enroll", crs.ID), lt, nil)
	require.Equal(t, http.StatusCreated, status)
	status, _ = h.do(http.MethodPost, fmt.Sprintf("/courses/%d/enroll", crs.ID), lt, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = h.do(http.MethodGet, fmt.Sprintf("/courses/%d/lessons/%d", crs.ID, lessons[0].ID), lt, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "correct_answer")

	status, env = h.do(http.MethodPost, "/progress/lesson", lt, fiber.Map{"lesson_id": lessons[0].ID, "completed": true})
	require.Equal(t, http.StatusOK, status)
	progress := decode[struct {
		Enrollment course.Enrollment `json:"enrollment"`
	}](t, env)
	assert.Equal(t, 50, progress.Enrollment.Progress)
	assert.Nil(t, progress.Enrollment.CompletedAt)

	status, _ = h.do(http.MethodPost, "/progress/video", lt, fiber.Map{"lesson_id": lessons[1].ID, "watch_time": 42})
	assert.Equal(t, http.StatusOK, status)

	answers := map[string]string{
		fmt.Sprint(quiz.Questions[0].ID): "a",
		fmt.Sprint(quiz.Questions[1].ID): "c",
	}
	status, env = h.do(http.MethodPost, "/quiz/submit", lt, fiber.Map{"quiz_id": quiz.ID, "answers": answers, "score": 100})
	require.Equal(t, http.StatusOK, status)
	graded := decode[struct {
		Score  int  `json:"score"`
		Passed bool `json:"passed"`
	}](t, env)
	assert.Equal(t, 50, graded.Score)
	assert.True(t, graded.Passed)

	status, env = h.do(http.MethodGet, fmt.Sprintf("/quiz/%d/attempts", quiz.ID), lt, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]course.QuizAttempt](t, env), 1)

	status, env = h.do(http.MethodGet, "/me/enrollments", lt, nil)
	require.Equal(t, http.StatusOK, status)
	enrollments := decode[[]course.Enrollment](t, env)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 50, enrollments[0].Progress)
}

func TestLabSubmissionAndGrading(t *testing.T) {
	h := newHarness(t)
	instructor := testutil.SeedUser(t, h.db, models.RoleInstructor, models.SubscriptionNone)
	learner := testutil.SeedUser(t, h.db, models.RoleLearner, models.SubscriptionNone)
	crs := testutil.SeedCourse(t, h.db, instructor.ID, 0, course.StatusPublished)
	module := testutil.SeedModule(t, h.db, crs.ID, true, false)
	lesson := testutil.SeedLessons(t, h.db, module.ID, 1)[0]
	testutil.SeedEnrollment(t, h.db, learner.ID, crs.ID)

	status, env := h.do(http.MethodPost, fmt.Sprintf("/instructor/lessons/%d/labs", lesson.ID), h.token(instructor), fiber.Map{
		"title": "Prayer walk", "requires_text": true, "requires_photo": true, "is_graded": true, "max_points": 10,
	})
	require.Equal(t, http.StatusCreated, status)
	lab := decode[course.Lab](t, env)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "Walked the block"))
	fw, err := mw.CreateFormFile("evidence", "walk.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte(pngHeader))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/labs/%d/submissions", lab.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	status, env = h.send(req, h.token(learner))
	require.Equal(t, http.StatusCreated, status, env.Message)
	sub := decode[course.LabSubmission](t, env)
	assert.Equal(t, "image/png", sub.EvidenceMime)
	assert.True(t, strings.HasPrefix(sub.EvidenceURL, "/uploads/labs/"))
	assert.Equal(t, course.SubmissionSubmitted, sub.Status)

	// text alone is not enough for a photo lab
	status, _ = h.do(http.MethodPost, fmt.Sprintf("/labs/%d/submissions", lab.ID), h.token(learner), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(http.MethodPost, fmt.Sprintf("/labs/submissions/%d/grade", sub.ID), h.token(learner), fiber.Map{"points": 10})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodPost, fmt.Sprintf("/labs/submissions/%d/grade", sub.ID), h.token(instructor), fiber.Map{"points": 8, "feedback": "Good"})
	require.Equal(t, http.StatusOK, status)
	graded := decode[course.LabSubmission](t, env)
	assert.Equal(t, course.SubmissionGraded, graded.Status)
	require.NotNil(t, graded.Points)
	assert.Equal(t, 8, *graded.Points)

	status, env = h.do(http.MethodGet, fmt.Sprintf("/instructor/labs/%d/submissions", lab.ID), h.token(instructor), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]course.LabSubmission](t, env), 1)
}

func TestCheckout(t *testing.T) {
	h := newHarness(t)
	instructor := testutil.SeedUser(t, h.db, models.RoleInstructor, models.SubscriptionNone)
	learner := testutil.SeedUser(t, h.db, models.RoleLearner, models.SubscriptionNone)
	paid := testutil.SeedCourse(t, h.db, instructor.ID, 4900, course.StatusPublished)
	draft := testutil.SeedCourse(t, h.db, instructor.ID, 4900, course.StatusDraft)
	owned := testutil.SeedCourse(t, h.db, instructor.ID, 4900, course.StatusPublished)
	testutil.SeedEnrollment(t, h.db, learner.ID, owned.ID)
	lt := h.token(learner)

	status, env := h.do(http.MethodPost, "/billing/checkout", lt, fiber.Map{"tier": "pro"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cs_sub", decode[payments.Session](t, env).ID)
	assert.Equal(t, []string{"PRO"}, h.provider.tiers)

	status, _ = h.do(http.MethodPost, "/billing/checkout", lt, fiber.Map{"course_id": paid.ID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint{paid.ID}, h.provider.courses)

	status, _ = h.do(http.MethodPost, "/billing/checkout", lt, fiber.Map{"course_id": draft.ID})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(http.MethodPost, "/billing/checkout", lt, fiber.Map{"course_id": owned.ID})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(http.MethodPost, "/billing/checkout", lt, fiber.Map{"tier": "PRO", "course_id": paid.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// no customer yet
	status, _ = h.do(http.MethodPost, "/billing/portal", lt, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func signedWebhook(payload string, secret string) *http.Request {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.SignatureHeader, fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func TestStripeWebhook(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.db, models.RoleLearner, models.SubscriptionNone)

	checkout := fmt.Sprintf(`{"id":"evt_checkout","object":"event","type":"checkout.session.completed","created":%d,
		"data":{"object":{"id":"cs_1","object":"checkout.session","mode":"subscription","customer":"cus_1","subscription":"sub_1",
		"client_reference_id":"%d","metadata":{"userId":"%d"}}}}`, time.Now().Unix(), learner.ID, learner.ID)

	status, env := h.send(signedWebhook(checkout, "whsec_wrong"), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Status)

	status, env = h.send(signedWebhook(checkout, webhookSecret), "")
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), billing.EventProcessed)

	var user models.User
	require.NoError(t, h.db.First(&user, learner.ID).Error)
	assert.Equal(t, models.SubscriptionActive, user.SubscriptionStatus)
	require.NotNil(t, user.StripeCustomerID)
	assert.Equal(t, "cus_1", *user.StripeCustomerID)

	status, env = h.send(signedWebhook(checkout, webhookSecret), "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "DUPLICATE")

	var rows int64
	require.NoError(t, h.db.Model(&billing.WebhookEvent{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	orphan := fmt.Sprintf(`{"id":"evt_orphan","object":"event","type":"invoice.payment_failed","created":%d,
		"data":{"object":{"id":"in_1","object":"invoice","customer":"cus_unlinked"}}}`, time.Now().Unix())
	status, _ = h.send(signedWebhook(orphan, webhookSecret), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	require.NoError(t, h.db.Model(&billing.WebhookEvent{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	unhandled := fmt.Sprintf(`{"id":"evt_other","object":"event","type":"customer.created","created":%d,"data":{"object":{"id":"cus_1"}}}`, time.Now().Unix())
	status, _ = h.send(signedWebhook(unhandled, webhookSecret), "")
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminDashboard(t *testing.T) {
	h := newHarness(t)
	admin := testutil.SeedUser(t, h.db, models.RoleAdmin, models.SubscriptionNone)
	testutil.SeedUser(t, h.db, models.RoleLearner, models.SubscriptionActive)

	status, env := h.do(http.MethodGet, "/admin/dashboard/stats", h.token(admin), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "total_users")

	status, env = h.do(http.MethodGet, "/admin/users/recent?limit=1", h.token(admin), nil)
	require.Equal(t, http.StatusOK, status)
	var recent []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &recent))
	assert.Len(t, recent, 1)

	status, _ = h.do(http.MethodGet, "/admin/users/recent?limit=500", h.token(admin), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(http.MethodPost, "/admin/courses/999/approve", h.token(admin), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
