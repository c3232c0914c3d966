package middleware

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dateQuery struct {
	Date string `form:"date" binding:"required,report_date" validate:"required,report_date"`
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	tests := []struct {
		date  string
		valid bool
	}{
		{"2019-08-01", true},
		{"2020-02-29", true},
		{"2019-02-30", false},
		{"200-01-03", false},
		{"01/08/2019", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			err := v.Struct(dateQuery{Date: tt.date})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestRegisterValidations_FieldNames(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	err := v.Struct(dateQuery{Date: "yesterday"})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "date", verrs[0].Field())
	assert.Equal(t, ReportDateTag, verrs[0].Tag())
}

func TestSetupValidator(t *testing.T) {
	assert.NoError(t, SetupValidator())
}
