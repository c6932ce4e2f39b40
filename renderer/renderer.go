package renderer

import (
	"context"
	"errors"

	"github.com/NastasiaHalabi/CertificateGenerator/layout"
)

var (
	// ErrFontLoad indicates a required font program could not be loaded or parsed.
	ErrFontLoad = errors.New("font load failed")

	// ErrImageDecode indicates the template image is not a valid PNG or JPEG.
	ErrImageDecode = errors.New("template image decode failed")
)

// AssembleInput 描述一次批量生成：模板图片、页面尺寸（pt）、变量与数据行。
type AssembleInput struct {
	Template     []byte
	MimeHint     string
	Width        float64
	Height       float64
	Variables    []layout.TextVariable
	Rows         []layout.Row
	IncludeIndex bool
	Meta         layout.DocumentMeta
}

// Document 是序列化后的多页 PDF，第 i 页对应第 i 行数据。
type Document struct {
	Bytes []byte
	Pages int
}

// Renderer 将模板与数据行组装为一份多页 PDF。
// 任一字体或图片错误都会中止整个批次，不返回部分结果。
type Renderer interface {
	Assemble(ctx context.Context, in AssembleInput) (*Document, error)
}
