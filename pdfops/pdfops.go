// Package pdfops derives single-page documents from an assembled certificate
// batch and concatenates documents, using pdfcpu.
package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrPageRange indicates a page index outside the document.
	ErrPageRange = errors.New("page index out of range")

	// ErrNothingToMerge indicates Merge was called without input buffers.
	ErrNothingToMerge = errors.New("nothing to merge")

	// ErrInvalidPDF indicates the input could not be parsed as a PDF.
	ErrInvalidPDF = errors.New("invalid pdf")
)

var configDirOnce sync.Once

// configuration 返回宽松校验的配置；pdfcpu 默认会在用户目录写配置文件，这里关闭。
func configuration() *model.Configuration {
	configDirOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func readContext(doc []byte) (*model.Context, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc), configuration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return ctx, nil
}

// PageCount returns the number of pages in doc.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), configuration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return n, nil
}

// ExtractPage copies page index (0-based) of doc into a fresh single-page document.
// doc is never modified.
func ExtractPage(doc []byte, index int) ([]byte, error) {
	ctx, err := readContext(doc)
	if err != nil {
		return nil, err
	}
	return extract(ctx, index)
}

// Extractor 解析一次源文档，之后可多次提取单页，避免每页重复解析。
type Extractor struct {
	ctx *model.Context
}

// NewExtractor parses doc once for repeated page extraction.
func NewExtractor(doc []byte) (*Extractor, error) {
	ctx, err := readContext(doc)
	if err != nil {
		return nil, err
	}
	return &Extractor{ctx: ctx}, nil
}

// PageCount returns the number of pages of the parsed document.
func (e *Extractor) PageCount() int { return e.ctx.PageCount }

// Page returns page index (0-based) as a standalone document.
func (e *Extractor) Page(index int) ([]byte, error) { return extract(e.ctx, index) }

// ExtractAll splits doc into one document per page, in page order.
func ExtractAll(doc []byte) ([][]byte, error) {
	e, err := NewExtractor(doc)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, e.PageCount())
	for i := 0; i < e.PageCount(); i++ {
		page, err := e.Page(i)
		if err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, nil
}

func extract(ctx *model.Context, index int) ([]byte, error) {
	if index < 0 || index >= ctx.PageCount {
		return nil, fmt.Errorf("%w: %d (pages: %d)", ErrPageRange, index, ctx.PageCount)
	}
	// pdfcpu 页码从 1 开始
	single, err := pdfcpu.ExtractPages(ctx, []int{index + 1}, false)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", index, err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(single, &buf); err != nil {
		return nil, fmt.Errorf("write page %d: %w", index, err)
	}
	return buf.Bytes(), nil
}

// Optimize rewrites doc with duplicate objects folded into one, such as the
// template image and fonts that the canvas writer repeats on every page.
func Optimize(doc []byte) ([]byte, error) {
	conf := configuration()
	conf.Cmd = model.OPTIMIZE
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(doc), &buf, conf); err != nil {
		return nil, fmt.Errorf("%w: optimize: %v", ErrInvalidPDF, err)
	}
	return buf.Bytes(), nil
}

// Merge concatenates every page of every buffer in order. No pages are
// reordered or deduplicated.
func Merge(buffers [][]byte) ([]byte, error) {
	switch len(buffers) {
	case 0:
		return nil, ErrNothingToMerge
	case 1:
		out := make([]byte, len(buffers[0]))
		copy(out, buffers[0])
		return out, nil
	}
	readers := make([]io.ReadSeeker, len(buffers))
	for i, b := range buffers {
		readers[i] = bytes.NewReader(b)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, configuration()); err != nil {
		return nil, fmt.Errorf("merge %d documents: %w", len(buffers), err)
	}
	return buf.Bytes(), nil
}
