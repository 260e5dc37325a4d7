// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/carcost/pkg/constants"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatXLSX,
	constants.OutputFormatPDF,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range OutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV,
		constants.OutputFormatXLSX, constants.OutputFormatPDF, format)
}

// IsBinaryFormat reports whether the format cannot be written to a terminal.
func IsBinaryFormat(format string) bool {
	return format == constants.OutputFormatXLSX || format == constants.OutputFormatPDF
}
