package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/fonts"
	"github.com/NastasiaHalabi/CertificateGenerator/layout"
	"github.com/NastasiaHalabi/CertificateGenerator/pdfops"
	"github.com/NastasiaHalabi/CertificateGenerator/renderer"
	"github.com/NastasiaHalabi/CertificateGenerator/shaping"
)

// 页码戳：距右边 24pt、距底边 16pt，10pt 灰色 sans。
const (
	indexRightInset = 24.0
	indexBaseline   = 16.0
	indexFontSize   = 10.0
	indexGray       = 0.4
)

// Renderer draws certificate pages via github.com/tdewolff/canvas.
type Renderer struct {
	fonts  fonts.Provider
	logger *zap.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	Fonts  fonts.Provider // 为空时使用内置 Go 字体
	Logger *zap.Logger
}

// NewRenderer creates a canvas-based renderer reading fonts from provider.
func NewRenderer(provider fonts.Provider) *Renderer {
	return NewRendererWithOptions(Options{Fonts: provider})
}

// NewRendererWithOptions creates a renderer with injected dependencies.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{fonts: opts.Fonts, logger: opts.Logger}
	if r.fonts == nil {
		r.fonts = fonts.Builtin{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// document 持有单次组装的全部状态：字体缓存、整形缓存与排版引擎。
type document struct {
	fonts  *fontCache
	engine *layout.Engine
	vars   []layout.TextVariable
	page   layout.Size
}

func (r *Renderer) newDocument(in renderer.AssembleInput) *document {
	fc := newFontCache(r.fonts, r.logger)
	return &document{
		fonts:  fc,
		engine: &layout.Engine{Typesetter: fc, Shaper: shaping.NewCache()},
		vars:   layout.OrderByLayer(in.Variables),
		page:   layout.Size{Width: in.Width, Height: in.Height},
	}
}

// layoutRow 按图层顺序为一行数据计算所有绘制指令。
func (d *document) layoutRow(row layout.Row) ([]layout.DrawInstruction, error) {
	var out []layout.DrawInstruction
	for _, v := range d.vars {
		ins, err := d.engine.Layout(v, row, d.page)
		if err != nil {
			return nil, err
		}
		out = append(out, ins...)
	}
	return out, nil
}

// Assemble implements renderer.Renderer: one page per row, template stretched
// over the whole page, variables drawn back layer first.
func (r *Renderer) Assemble(ctx context.Context, in renderer.AssembleInput) (*renderer.Document, error) {
	if len(in.Rows) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	if in.Width <= 0 || in.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", in.Width, in.Height)
	}
	img, err := decodeTemplate(in.Template, in.MimeHint)
	if err != nil {
		return nil, err
	}

	doc := r.newDocument(in)
	wMM, hMM := toMm(in.Width), toMm(in.Height)

	var buf bytes.Buffer
	writer := pdf.New(&buf, wMM, hMM, nil)
	applyMeta(writer, in.Meta)
	for i, row := range in.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			writer.NewPage(wMM, hMM)
		}
		c := canvas.New(wMM, hMM)
		cx := canvas.NewContext(c)

		drawTemplate(cx, img, wMM, hMM)

		instructions, err := doc.layoutRow(row)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行排版失败: %w", i+1, err)
		}
		for _, ins := range instructions {
			if err := doc.drawInstruction(cx, ins); err != nil {
				return nil, fmt.Errorf("第 %d 行绘制失败: %w", i+1, err)
			}
		}
		if in.IncludeIndex {
			if err := doc.drawIndex(cx, i+1); err != nil {
				return nil, err
			}
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	// canvas 每页都会重新写入模板图与字体，经 pdfcpu 合并重复对象后整份文档只保留一份。
	out, err := pdfops.Optimize(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("优化 PDF 失败: %w", err)
	}
	r.logger.Debug("document assembled",
		zap.Int("pages", len(in.Rows)),
		zap.Int("fonts_loaded", doc.fonts.loaded()),
		zap.Int("raw_bytes", buf.Len()),
		zap.Int("bytes", len(out)),
	)
	return &renderer.Document{Bytes: out, Pages: len(in.Rows)}, nil
}

// Plan 只做排版不绘制，返回每页的绘制指令，供调试输出使用。
func (r *Renderer) Plan(ctx context.Context, in renderer.AssembleInput) ([]layout.DebugPage, error) {
	doc := r.newDocument(in)
	pages := make([]layout.DebugPage, 0, len(in.Rows))
	for i, row := range in.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		instructions, err := doc.layoutRow(row)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行排版失败: %w", i+1, err)
		}
		pages = append(pages, layout.DebugPage{Row: i + 1, Size: doc.page, Instructions: instructions})
	}
	return pages, nil
}

func decodeTemplate(data []byte, mimeHint string) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty template", renderer.ErrImageDecode)
	}
	if hint := strings.ToLower(mimeHint); hint != "" && !strings.Contains(hint, "png") && !strings.Contains(hint, "jpeg") && !strings.Contains(hint, "jpg") {
		return nil, fmt.Errorf("%w: unsupported type %s", renderer.ErrImageDecode, mimeHint)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", renderer.ErrImageDecode, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: unsupported format %s", renderer.ErrImageDecode, format)
	}
	return img, nil
}

// drawTemplate 把模板图拉伸铺满整页（mm）。
func drawTemplate(cx *canvas.Context, img image.Image, wMM, hMM float64) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return
	}
	dpmm := float64(bounds.Dx()) / wMM
	naturalH := float64(bounds.Dy()) / dpmm
	cx.Push()
	if naturalH > 0 && naturalH != hMM {
		cx.Scale(1, hMM/naturalH)
	}
	cx.DrawImage(0, 0, img, canvas.DPMM(dpmm))
	cx.Pop()
}

// drawInstruction 绘制一行文本；坐标由 pt 换算为 mm，旋转围绕行锚点。
func (d *document) drawInstruction(cx *canvas.Context, ins layout.DrawInstruction) error {
	if ins.Text == "" {
		return nil
	}
	face, err := d.fonts.face(ins.Font, ins.FontSize, ins.Color)
	if err != nil {
		return err
	}
	x, y := toMm(ins.X), toMm(ins.Y)
	text := canvas.NewTextLine(face, ins.Text, canvas.Left)

	cx.Push()
	if ins.Rotation != 0 {
		cx.RotateAbout(ins.Rotation, x, y)
	}
	cx.DrawText(x, y, text)
	for _, off := range ins.Offsets {
		cx.DrawText(x+toMm(off), y, text)
	}
	cx.Pop()
	return nil
}

func (d *document) drawIndex(cx *canvas.Context, n int) error {
	gray := int(indexGray * 255)
	face, err := d.fonts.face(layout.FontKey{Family: layout.FamilySans}, indexFontSize, layout.Color{R: gray, G: gray, B: gray})
	if err != nil {
		return err
	}
	x := toMm(d.page.Width - indexRightInset)
	cx.DrawText(x, toMm(indexBaseline), canvas.NewTextLine(face, strconv.Itoa(n), canvas.Left))
	return nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func colorFromLayout(c layout.Color) color.Color {
	r, g, b := c.Normalized()
	return canvas.RGBA(r, g, b, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return layout.ToPT(mm) }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return layout.ToMM(pt) }
