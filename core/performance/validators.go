package performance

import (
	"github.com/go-playground/validator/v10"

	"github.com/Hexmon/e-dossier-sub006/core"
)

var (
	remarkKeyTag  = "remarkkey"
	remarkKeyText = "{0} must be a report subject key"
)

func init() {
	_ = core.Validate.RegisterValidation(remarkKeyTag, remarkKeyValidation)
	core.RegisterCustomTranslation(remarkKeyTag, remarkKeyText)
}

// remarkKeyValidation checks that a subject remark is keyed by one of SubjectKeys.
func remarkKeyValidation(fl validator.FieldLevel) bool {
	key := SubjectKey(fl.Field().String())
	for _, k := range SubjectKeys {
		if k == key {
			return true
		}
	}
	return false
}
