package jobs

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// ReportFilename 返回报告文件名：有前缀时为 {prefix}_email_status.csv。
func ReportFilename(prefix string) string {
	if prefix == "" {
		return "email_status.csv"
	}
	return prefix + "_email_status.csv"
}

// BuildReport renders the status CSV: header row,email,status,error; email and
// error are always quoted with embedded quotes doubled; lines joined by "\n"
// with no trailing newline.
func BuildReport(entries []StatusEntry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "row,email,status,error")
	for _, e := range entries {
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(e.Row),
			quote(e.Email),
			string(e.Status),
			quote(e.Error),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// EncodeReport returns BuildReport as base64.
func EncodeReport(entries []StatusEntry) string {
	return base64.StdEncoding.EncodeToString([]byte(BuildReport(entries)))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
