package reminder

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hanslwng/taskmatrix/core"
)

var (
	leadMinutesTag  = "leadminutes"
	leadMinutesText = fmt.Sprintf("reminder lead time must be one of %v minutes", SupportedLeads)
)

func init() {
	_ = core.Validate.RegisterValidation(leadMinutesTag, leadMinutesValidation)
	core.RegisterCustomTranslation(leadMinutesTag, leadMinutesText)
}

// leadMinutesValidation checks the lead time against the supported set.
func leadMinutesValidation(fl validator.FieldLevel) bool {
	lead := int(fl.Field().Int())
	for _, supported := range SupportedLeads {
		if lead == supported {
			return true
		}
	}
	return false
}
