package middleware

import (
	"reflect"
	"strings"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ReportDateTag validates a YYYY-MM-DD calendar date
const ReportDateTag = "report_date"

// SetupValidator registers the custom tags on gin's validator.
// It must run before the router serves requests.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterValidations(v)
}

// RegisterValidations adds the report tags to v and names fields by their form tag
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return v.RegisterValidation(ReportDateTag, func(fl validator.FieldLevel) bool {
		return report.IsDateValid(fl.Field().String())
	})
}
