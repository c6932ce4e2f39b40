package canvasrenderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/text"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/fonts"
	"github.com/NastasiaHalabi/CertificateGenerator/layout"
	"github.com/NastasiaHalabi/CertificateGenerator/renderer"
)

// fontCache 以 layout.FontKey 为键缓存已加载的字体家族，作用域为单个文档。
// 同一键只解析、嵌入一次；文档结束即丢弃。
type fontCache struct {
	provider fonts.Provider
	logger   *zap.Logger

	mu       sync.Mutex
	families map[layout.FontKey]*canvas.FontFamily
	loads    int
}

func newFontCache(provider fonts.Provider, logger *zap.Logger) *fontCache {
	return &fontCache{
		provider: provider,
		logger:   logger,
		families: map[layout.FontKey]*canvas.FontFamily{},
	}
}

// face 返回指定字号（pt）与颜色的字体面。
// 文本在 shaping 中已排成从左到右的视觉顺序，方向固定为 LTR，canvas 不再按双向算法反转。
func (fc *fontCache) face(key layout.FontKey, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := fc.family(key)
	if err != nil {
		return nil, err
	}
	face := family.Face(sizePt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal)
	face.Direction = text.LeftToRight
	return face, nil
}

// TextWidth 实现 layout.Typesetter：canvas 的宽度为 mm，这里换算回 pt。
func (fc *fontCache) TextWidth(key layout.FontKey, size float64, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	face, err := fc.face(key, size, layout.Color{})
	if err != nil {
		return 0, err
	}
	return toPt(face.TextWidth(s)), nil
}

func (fc *fontCache) family(key layout.FontKey) (*canvas.FontFamily, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.familyLocked(key)
}

func (fc *fontCache) familyLocked(key layout.FontKey) (*canvas.FontFamily, error) {
	if family, ok := fc.families[key]; ok {
		return family, nil
	}

	asset := assetName(key)
	data, err := fc.provider.Font(asset)
	if err != nil {
		fallback, ok := fallbackKey(key)
		if !ok || !errors.Is(err, fonts.ErrFontNotFound) {
			return nil, fmt.Errorf("%w: %s: %v", renderer.ErrFontLoad, asset, err)
		}
		fc.logger.Warn("font asset missing, using fallback family",
			zap.String("asset", asset),
			zap.String("fallback", assetName(fallback)),
		)
		family, err := fc.familyLocked(fallback)
		if err != nil {
			return nil, err
		}
		fc.families[key] = family
		return family, nil
	}

	family := canvas.NewFontFamily(key.String())
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrFontLoad, asset, err)
	}
	fc.families[key] = family
	fc.loads++
	return family, nil
}

// loaded 返回实际解析过的字体程序数量（回退共享同一家族，不重复计数）。
func (fc *fontCache) loaded() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.loads
}

// assetName 把缓存键映射到字体提供者的资源名。
func assetName(key layout.FontKey) string {
	switch key.Family {
	case layout.FamilyArabic:
		return fonts.ArabicRegular
	case layout.FamilyPublicSans:
		switch key.Weight {
		case layout.WeightExtraBold:
			return fonts.PublicSansExtraBold
		case layout.WeightBold:
			return fonts.PublicSansBold
		default:
			return fonts.PublicSansRegular
		}
	default:
		return fonts.Variant(key.Family.String(), key.Weight >= layout.WeightBold, key.Italic)
	}
}

// fallbackKey 为可选家族给出替代：Public Sans、serif、mono 缺失时退回同样式的 sans。
// 阿拉伯字体与 sans 本身没有替代。
func fallbackKey(key layout.FontKey) (layout.FontKey, bool) {
	switch key.Family {
	case layout.FamilyPublicSans, layout.FamilySerif, layout.FamilyMono:
		weight := layout.WeightRegular
		if key.Weight >= layout.WeightBold {
			weight = layout.WeightBold
		}
		return layout.FontKey{Family: layout.FamilySans, Weight: weight, Italic: key.Italic}, true
	default:
		return layout.FontKey{}, false
	}
}

var _ layout.Typesetter = (*fontCache)(nil)
