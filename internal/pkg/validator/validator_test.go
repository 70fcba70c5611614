package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidPeriod(t *testing.T) {
	for _, p := range []string{"2024-01", "2025-12"} {
		assert.True(t, IsValidPeriod(p), p)
	}
	for _, p := range []string{"2024-13", "2024-00", "24-01", "2024/01", "2024-1", ""} {
		assert.False(t, IsValidPeriod(p), p)
	}
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2024-02-29")
	assert.True(t, ok)
	_, ok = IsValidDate("2023-02-29")
	assert.False(t, ok)
}

type sampleRequest struct {
	Name   string `json:"name" validate:"required,max=10"`
	Level  string `json:"level" validate:"oneof=staff manager"`
	Period string `json:"period" validate:"period"`
	Score  int    `json:"score" validate:"gte=1,lte=5"`
	Hidden string `json:"-" validate:"omitempty,max=2"`
}

func TestStruct(t *testing.T) {
	err := Struct(sampleRequest{Name: "ok", Level: "staff", Period: "2024-05", Score: 3})
	assert.NoError(t, err)

	err = Struct(sampleRequest{Level: "boss", Period: "May", Score: 9, Hidden: "abc"})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	m := verrs.ToMap()
	assert.Equal(t, "name is required", m["name"])
	assert.Contains(t, m["level"], "must be one of")
	assert.Equal(t, "period must be in YYYY-MM format", m["period"])
	assert.Contains(t, m["score"], "less than or equal")
	assert.Contains(t, m, "Hidden")
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("code", "code is required")
	require.Error(t, errs.Err())
	assert.Equal(t, "code: code is required", errs.Error())
}

type labelRequest struct {
	Name string `json:"name" validate:"notblank,max=5"`
}

func TestStruct_CountsCharactersNotBytes(t *testing.T) {
	assert.NoError(t, Struct(labelRequest{Name: "研发部门"}))

	err := Struct(labelRequest{Name: "研发部门中心"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "name must not exceed 5 characters", verrs.ToMap()["name"])

	err = Struct(labelRequest{Name: "   "})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "name is required", verrs.ToMap()["name"])
}

func TestSplit(t *testing.T) {
	errs, err := Split(nil)
	assert.Nil(t, errs)
	assert.NoError(t, err)

	errs, err = Split(ValidationErrors{{Field: "name", Message: "name is required"}})
	assert.NoError(t, err)
	assert.Len(t, errs, 1)

	boom := errors.New("boom")
	errs, err = Split(boom)
	assert.Nil(t, errs)
	assert.ErrorIs(t, err, boom)
}
