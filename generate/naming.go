package generate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/NastasiaHalabi/CertificateGenerator/binding"
	"github.com/NastasiaHalabi/CertificateGenerator/email"
	"github.com/NastasiaHalabi/CertificateGenerator/layout"
)

const maxNameRunes = 60

var (
	forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// SanitizeFilename 去掉 \/:*?"<>| 与首尾空白，空白串折叠为 "_"，截断到 60 个字符；
// 结果为空时返回 certificate_{row}。row 从 1 开始。
func SanitizeFilename(raw string, row int) string {
	s := strings.TrimSpace(raw)
	s = forbiddenChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > maxNameRunes {
		s = string(r[:maxNameRunes])
	}
	if s == "" {
		return fmt.Sprintf("certificate_%d", row)
	}
	return s
}

// RawFilename picks the unsanitized name: attachment template, then the
// reserved __filename key, then the configured filename column.
func RawFilename(opts *Options, row layout.Row) string {
	if opts.AttachmentName != "" {
		if name := binding.Interpolate(opts.AttachmentName, row); strings.TrimSpace(name) != "" {
			return name
		}
	}
	if v, ok := row[binding.FilenameKey]; ok && v != "" {
		return v
	}
	if opts.FilenameColumn != "" {
		if v, ok := binding.Lookup(row, opts.FilenameColumn); ok {
			return v
		}
	}
	return ""
}

func prefix(opts *Options) string {
	if opts.Filename == "" {
		return ""
	}
	return opts.Filename + "_"
}

// IndividualFilename returns "{prefix}{sanitized}.pdf" for row index i (0-based).
func IndividualFilename(opts *Options, row layout.Row, i int) string {
	return prefix(opts) + SanitizeFilename(RawFilename(opts, row), i+1) + ".pdf"
}

// MergedFilename returns "{prefix}all_certificates.pdf".
func MergedFilename(opts *Options) string {
	return prefix(opts) + "all_certificates.pdf"
}

// RawRecipients 取收件人原文：__email 优先，其次邮件列。
func RawRecipients(opts *Options, row layout.Row) string {
	if v, ok := row[binding.EmailKey]; ok && v != "" {
		return v
	}
	if opts.EmailColumn != "" {
		if v, ok := binding.Lookup(row, opts.EmailColumn); ok {
			return v
		}
	}
	return ""
}

// Recipients parses the row's recipient list.
func Recipients(opts *Options, row layout.Row) []string {
	return email.ParseRecipients(RawRecipients(opts, row))
}
