package output

import (
	"io"

	yuerrors "github.com/nanw1103/yumako/internal/errors"
	"github.com/nanw1103/yumako/internal/ui"
)

// Format specifies the output format type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// formats lists the supported output formats.
var formats = []string{string(FormatText), string(FormatJSON), string(FormatCSV)}

// ParseFormat validates a format name from user input.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatJSON, FormatCSV:
		return Format(name), nil
	}
	return "", yuerrors.UnknownFormatError(name, formats)
}

// Formatter handles output formatting for different formats.
type Formatter struct {
	format   Format
	writer   io.Writer
	renderer *ui.Renderer
}

// NewFormatter creates a new formatter with the specified format.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format:   format,
		writer:   writer,
		renderer: ui.NewRendererWithOptions(ui.WithOutput(writer)),
	}
}
