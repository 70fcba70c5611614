package kpi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAchievement(t *testing.T) {
	target := dec("200")
	def := Definition{Weight: dec("30"), TargetValue: &target}

	rate, score := Achievement(def, dec("150"))
	require.NotNil(t, rate)
	require.NotNil(t, score)
	assert.True(t, rate.Equal(dec("75")), rate.String())
	assert.True(t, score.Equal(dec("22.5")), score.String())
}

func TestAchievement_RoundsToTwoPlaces(t *testing.T) {
	target := dec("3")
	def := Definition{Weight: dec("100"), TargetValue: &target}

	rate, score := Achievement(def, dec("1"))
	assert.Equal(t, "33.33", rate.StringFixed(2))
	assert.Equal(t, "33.33", score.StringFixed(2))
}

func TestAchievement_NoTarget(t *testing.T) {
	rate, score := Achievement(Definition{Weight: dec("10")}, dec("5"))
	assert.Nil(t, rate)
	assert.Nil(t, score)

	zero := decimal.Zero
	rate, score = Achievement(Definition{Weight: dec("10"), TargetValue: &zero}, dec("5"))
	assert.Nil(t, rate)
	assert.Nil(t, score)
}

func TestCreateDefinitionRequest_Validate(t *testing.T) {
	req := CreateDefinitionRequest{PositionID: 1, Category: "sales", Name: "Revenue", Weight: dec("120")}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight")

	req.Weight = dec("40")
	assert.NoError(t, req.Validate())
}

func TestSubmitActualRequest_Validate(t *testing.T) {
	req := SubmitActualRequest{KpiDefinitionID: 1, Period: "2024-13", ActualValue: dec("1")}
	assert.Error(t, req.Validate())

	req.Period = "2024-12"
	assert.NoError(t, req.Validate())
}
