package main

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Hexmon/e-dossier-sub006/core"
)

// describeError renders err for the operator: field errors for bad input, the raw chain otherwise.
func describeError(err error) string {
	var fldErrs map[string]string

	switch cause := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs = make(map[string]string)
		for _, vErr := range cause {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			return "invalid input: " + cause.Error()
		}
		fldErrs = make(map[string]string)
		for _, fErr := range cause.Fields {
			fldErrs[fErr.Field] = fErr.Error
		}
	default: // anything else is an internal failure
		return err.Error()
	}

	flds := make([]string, 0, len(fldErrs))
	for fld := range fldErrs {
		flds = append(flds, fld)
	}
	sort.Strings(flds)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, fld := range flds {
		b.WriteString("\n  " + fld + ": " + fldErrs[fld])
	}
	return b.String()
}
