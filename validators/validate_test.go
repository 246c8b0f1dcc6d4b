package validators

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=3"`
	Score *int   `json:"score" validate:"required,min=0,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestStruct_Messages(t *testing.T) {
	over := 101
	errors := Struct(&sample{Name: "ab", Score: &over, Email: "nope"})

	assert.Equal(t, map[string]string{
		"name":  "name must be at least 3 characters long!",
		"score": "score must be at most 100!",
		"email": "Invalid email!",
	}, errors)

	zero := 0
	assert.Nil(t, Struct(&sample{Name: "abc", Score: &zero}))
	assert.Equal(t, "score is required!", Struct(&sample{Name: "abc"})["score"])
}

func TestBody(t *testing.T) {
	app := fiber.New()
	app.Post("/", Body[sample]("validatedSample"), func(c *fiber.Ctx) error {
		req := c.Locals("validatedSample").(*sample)
		return c.SendString(req.Name)
	})

	post := func(body string) (int, string) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return resp.StatusCode, buf.String()
	}

	status, body := post(`{"name":"Ruth","score":90}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ruth", body)

	status, body = post(`{"name":"Ru"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	var env struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	assert.Contains(t, env.Data, "name")
	assert.Contains(t, env.Data, "score")

	status, _ = post(`{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/courses/:id", IDParam("id", "courseID", "Course ID"), func(c *fiber.Ctx) error {
		return c.JSON(c.Locals("courseID").(uint))
	})

	for path, want := range map[string]int{
		"/courses/12":  fiber.StatusOK,
		"/courses/0":   fiber.StatusBadRequest,
		"/courses/-1":  fiber.StatusBadRequest,
		"/courses/abc": fiber.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
