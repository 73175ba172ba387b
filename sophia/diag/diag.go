package diag

import "fmt"

const (
	CodeScanIllegal           = "AES1001"
	CodeScanUnterminated      = "AES1002"
	CodeScanNoInput           = "AES1003"
	CodeParseUnexpected       = "AES1101"
	CodeParseUnsupported      = "AES1102"
	CodeParseAmbiguous        = "AES1103"
	CodeSemaMissingContract   = "AES2001"
	CodeSemaDuplicateFunction = "AES2002"
	CodeSemaDuplicateType     = "AES2003"
	CodeSemaDuplicateCon      = "AES2004"
	CodeSemaDuplicateParam    = "AES2005"
	CodeSemaUnknownType       = "AES2006"
	CodeSemaUnboundTypeVar    = "AES2007"
)

// Position describes a line/column position in a source file.
type Position struct {
	Line   int
	Column int
}

// Span describes a source range.
type Span struct {
	File  string
	Start Position
	End   Position
}

// Diagnostic is a structured compile-time error. Notes carries extra
// detail lines, e.g. the competing interpretations of an ambiguous parse.
type Diagnostic struct {
	Code    string
	Message string
	Span    Span
	Notes   []string
}

func (d Diagnostic) Error() string {
	if d.Span.File == "" || d.Span.Start.Line <= 0 || d.Span.Start.Column <= 0 {
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: [%s] %s",
		d.Span.File,
		d.Span.Start.Line,
		d.Span.Start.Column,
		d.Code,
		d.Message,
	)
}

// Diagnostics is an ordered diagnostic list.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	if len(ds) == 1 {
		return ds[0].Error()
	}
	return fmt.Sprintf("%s (and %d more error(s))", ds[0].Error(), len(ds)-1)
}

func (ds Diagnostics) HasErrors() bool { return len(ds) > 0 }
