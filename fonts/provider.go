package fonts

import (
	"errors"
	"fmt"
)

// Asset names understood by every Provider.
const (
	SansRegular    = "sans-regular"
	SansBold       = "sans-bold"
	SansItalic     = "sans-italic"
	SansBoldItalic = "sans-bolditalic"

	SerifRegular    = "serif-regular"
	SerifBold       = "serif-bold"
	SerifItalic     = "serif-italic"
	SerifBoldItalic = "serif-bolditalic"

	MonoRegular    = "mono-regular"
	MonoBold       = "mono-bold"
	MonoItalic     = "mono-italic"
	MonoBoldItalic = "mono-bolditalic"

	PublicSansRegular   = "publicsans-regular"
	PublicSansBold      = "publicsans-bold"
	PublicSansExtraBold = "publicsans-extrabold"

	ArabicRegular = "arabic-regular"
)

var (
	// ErrFontNotFound indicates the provider has no asset with the requested name.
	ErrFontNotFound = errors.New("font not found")

	// ErrInvalidBasePath indicates the font directory is missing or unreadable.
	ErrInvalidBasePath = errors.New("invalid font directory")
)

// Provider returns raw font program bytes (TTF/OTF) by asset name.
type Provider interface {
	Font(name string) ([]byte, error)
}

// Variant 拼出 "family-style" 形式的资源名，family 取 sans/serif/mono。
func Variant(family string, bold, italic bool) string {
	switch {
	case bold && italic:
		return family + "-bolditalic"
	case bold:
		return family + "-bold"
	case italic:
		return family + "-italic"
	default:
		return family + "-regular"
	}
}

// Chain 依次询问各个 Provider，第一个拥有该资源的生效。
type Chain []Provider

// Font implements Provider.
func (c Chain) Font(name string) ([]byte, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		data, err := p.Font(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrFontNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFontNotFound, name)
}

var _ Provider = Chain(nil)
