package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyresSmith/projects-tracker-backend/internal/payload"
	"github.com/CyresSmith/projects-tracker-backend/shared/validation"
)

func validRegisterRequest() payload.RegisterRequest {
	return payload.RegisterRequest{
		FullName:  "Jane Doe Co",
		Password:  "Passw0rd",
		Email:     "jane@co.com",
		Phone:     "+380501234567",
		Services:  []string{"branding"},
		Desc:      "A thirty character description for the brief.",
		Mission:   "A thirty character mission text for the brief.",
		Values:    "A thirty character values statement for the brief.",
		Goals:     "A thirty character goals statement for the brief.",
		Budget:    1000,
		DateStart: time.Now().AddDate(0, 0, 1),
		Deadline:  time.Now().AddDate(0, 0, 30),
	}
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return v
}

func TestValidRegisterRequestPasses(t *testing.T) {
	v := newValidator(t)
	assert.NoError(t, v.Struct(validRegisterRequest()))
}

func TestBudgetBoundaries(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		budget int
		valid  bool
	}{
		{199, false},
		{200, true},
		{5000, true},
		{5001, false},
	}

	for _, tt := range tests {
		req := validRegisterRequest()
		req.Budget = tt.budget

		err := v.Struct(req)
		if tt.valid {
			assert.NoError(t, err, "budget %d should be accepted", tt.budget)
		} else {
			require.Error(t, err, "budget %d should be rejected", tt.budget)

			var fields validation.FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Contains(t, fields, "Budget")
		}
	}
}

func TestPasswordRules(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd", true},
		{"passw0rd", false},          // no uppercase
		{"PASSW0RD", false},          // no lowercase
		{"Password", false},          // no digit
		{"Pw0rd", false},             // too short
		{"Passw0rdPassw0rd1", false}, // too long
	}

	for _, tt := range tests {
		req := validRegisterRequest()
		req.Password = tt.password

		err := v.Struct(req)
		if tt.valid {
			assert.NoError(t, err, "password %q should be accepted", tt.password)
		} else {
			assert.Error(t, err, "password %q should be rejected", tt.password)
		}
	}
}

func TestServicesMustNotBeEmpty(t *testing.T) {
	v := newValidator(t)

	req := validRegisterRequest()
	req.Services = nil
	assert.Error(t, v.Struct(req))

	req.Services = []string{""}
	assert.Error(t, v.Struct(req))
}

func TestLinksLimit(t *testing.T) {
	v := newValidator(t)

	req := validRegisterRequest()
	for i := 0; i < 10; i++ {
		req.Links = append(req.Links, "https://example.com")
	}
	assert.NoError(t, v.Struct(req))

	req.Links = append(req.Links, "https://example.com")
	assert.Error(t, v.Struct(req))
}

func TestDatesMustNotBeInThePast(t *testing.T) {
	v := newValidator(t)

	req := validRegisterRequest()
	req.DateStart = time.Now().AddDate(0, 0, -1)
	assert.Error(t, v.Struct(req))

	req = validRegisterRequest()
	req.Deadline = time.Now().AddDate(0, 0, -1)
	assert.Error(t, v.Struct(req))
}

func TestFieldErrorsCarryMessages(t *testing.T) {
	v := newValidator(t)

	req := validRegisterRequest()
	req.FullName = "Jane"
	req.Budget = 100

	err := v.Struct(req)
	require.Error(t, err)

	var fields validation.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "FullName")
	assert.Contains(t, fields, "Budget")
	assert.NotEmpty(t, err.Error())
}

func TestLoginRequestValidation(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(payload.LoginRequest{Email: "jane@co.com", Password: "Passw0rd"}))
	assert.Error(t, v.Struct(payload.LoginRequest{Email: "not-an-email", Password: "Passw0rd"}))
	assert.Error(t, v.Struct(payload.LoginRequest{Email: "jane@co.com"}))
}
