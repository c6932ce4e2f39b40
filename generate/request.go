// Package generate turns a generation request into individual and merged
// certificate PDFs and, when asked, queues the per-row emails.
package generate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/NastasiaHalabi/CertificateGenerator/layout"
)

var (
	// ErrValidation marks a request the caller must fix.
	ErrValidation = errors.New("invalid request")

	// ErrEmailNotConfigured indicates email was requested but no SMTP sender exists.
	ErrEmailNotConfigured = errors.New("email is not configured")
)

// ValidationError carries the user-facing message of a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// 面向调用方的校验提示。
const (
	msgTemplateRequired = "Template data is required."
	msgRowsRequired     = "Excel rows are required."
	msgVariableRequired = "At least one variable is required."
	msgOptionsRequired  = "PDF options are required."
)

func msgTooManyRows(max int) string { return fmt.Sprintf("Maximum %d rows per batch.", max) }

// OutputFormat selects which documents a request returns.
type OutputFormat string

const (
	FormatIndividual OutputFormat = "individual"
	FormatMerged     OutputFormat = "merged"
	FormatBoth       OutputFormat = "both"
)

// Individual reports whether per-row documents are returned. Empty means both.
func (f OutputFormat) Individual() bool { return f != FormatMerged }

// Merged reports whether the merged document is returned.
func (f OutputFormat) Merged() bool { return f != FormatIndividual }

func (f OutputFormat) valid() bool {
	switch f {
	case "", FormatIndividual, FormatMerged, FormatBoth:
		return true
	}
	return false
}

// Options controls outputs, naming and email dispatch.
type Options struct {
	OutputFormat   OutputFormat `json:"outputFormat" yaml:"outputFormat"`
	Filename       string       `json:"filename,omitempty" yaml:"filename,omitempty"`
	Quality        string       `json:"quality,omitempty" yaml:"quality,omitempty"` // low|medium|high，仅作提示
	IncludeIndex   bool         `json:"includeIndex,omitempty" yaml:"includeIndex,omitempty"`
	SendEmail      bool         `json:"sendEmail,omitempty" yaml:"sendEmail,omitempty"`
	EmailSubject   string       `json:"emailSubject,omitempty" yaml:"emailSubject,omitempty"`
	EmailBody      string       `json:"emailBody,omitempty" yaml:"emailBody,omitempty"`
	EmailCc        string       `json:"emailCc,omitempty" yaml:"emailCc,omitempty"`
	EmailBcc       string       `json:"emailBcc,omitempty" yaml:"emailBcc,omitempty"`
	EmailColumn    string       `json:"emailColumn,omitempty" yaml:"emailColumn,omitempty"`
	FilenameColumn string       `json:"filenameColumn,omitempty" yaml:"filenameColumn,omitempty"`
	AttachmentName string       `json:"attachmentName,omitempty" yaml:"attachmentName,omitempty"`
}

// Request is one batch. Template bytes may be given directly or as a data URL.
type Request struct {
	TemplateDataURL string                `json:"templateDataUrl"`
	TemplateWidth   float64               `json:"templateWidth"`
	TemplateHeight  float64               `json:"templateHeight"`
	Variables       []layout.TextVariable `json:"variables"`
	Rows            []layout.Row          `json:"rows"`
	Options         *Options              `json:"options"`

	Template     []byte `json:"-"`
	TemplateMime string `json:"-"`
}

// File is a named output document; Data marshals as base64.
type File struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// Response lists the produced documents and the email job id, if any.
type Response struct {
	Individual []File `json:"individual,omitempty"`
	Merged     *File  `json:"merged,omitempty"`
	EmailJobID string `json:"emailJobId,omitempty"`
}

// DecodeDataURL decodes "data:<mime>;base64,<payload>". Input without the
// data: prefix is treated as bare base64 with an empty mime type.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", invalid(msgTemplateRequired)
	}
	mime := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s[len("data:"):], ",")
		if !ok {
			return nil, "", invalid("Template data URL is malformed.")
		}
		params := strings.Split(header, ";")
		mime = strings.ToLower(strings.TrimSpace(params[0]))
		isBase64 := false
		for _, p := range params[1:] {
			if strings.EqualFold(strings.TrimSpace(p), "base64") {
				isBase64 = true
			}
		}
		if !isBase64 {
			return nil, "", invalid("Template data URL must be base64 encoded.")
		}
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return nil, "", invalid("Template data URL is not valid base64.")
		}
	}
	if len(data) == 0 {
		return nil, "", invalid(msgTemplateRequired)
	}
	return data, mime, nil
}

// validate 按固定顺序检查请求，返回模板字节与 MIME 提示。
func validate(req *Request, maxRows int) ([]byte, string, error) {
	tpl, mime := req.Template, req.TemplateMime
	if len(tpl) == 0 && strings.TrimSpace(req.TemplateDataURL) == "" {
		return nil, "", invalid(msgTemplateRequired)
	}
	if req.TemplateWidth <= 0 || req.TemplateHeight <= 0 {
		return nil, "", invalid(msgTemplateRequired)
	}
	if len(req.Rows) == 0 {
		return nil, "", invalid(msgRowsRequired)
	}
	if len(req.Variables) == 0 {
		return nil, "", invalid(msgVariableRequired)
	}
	if len(req.Rows) > maxRows {
		return nil, "", invalid(msgTooManyRows(maxRows))
	}
	if req.Options == nil {
		return nil, "", invalid(msgOptionsRequired)
	}
	if !req.Options.OutputFormat.valid() {
		return nil, "", invalid(fmt.Sprintf("Unknown output format %q.", req.Options.OutputFormat))
	}
	if err := layout.ValidateSet(req.Variables); err != nil {
		return nil, "", invalid(err.Error())
	}
	if len(tpl) == 0 {
		var err error
		if tpl, mime, err = DecodeDataURL(req.TemplateDataURL); err != nil {
			return nil, "", err
		}
	}
	return tpl, mime, nil
}
