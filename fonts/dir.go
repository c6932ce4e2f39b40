package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileNames maps asset names to the conventional file names inside a font directory.
var DefaultFileNames = map[string]string{
	SansRegular:         "Sans-Regular.ttf",
	SansBold:            "Sans-Bold.ttf",
	SansItalic:          "Sans-Italic.ttf",
	SansBoldItalic:      "Sans-BoldItalic.ttf",
	SerifRegular:        "Serif-Regular.ttf",
	SerifBold:           "Serif-Bold.ttf",
	SerifItalic:         "Serif-Italic.ttf",
	SerifBoldItalic:     "Serif-BoldItalic.ttf",
	MonoRegular:         "Mono-Regular.ttf",
	MonoBold:            "Mono-Bold.ttf",
	MonoItalic:          "Mono-Italic.ttf",
	MonoBoldItalic:      "Mono-BoldItalic.ttf",
	PublicSansRegular:   "PublicSans-Regular.ttf",
	PublicSansBold:      "PublicSans-Bold.ttf",
	PublicSansExtraBold: "PublicSans-ExtraBold.ttf",
	ArabicRegular:       "NotoNaskhArabic-Regular.ttf",
}

// Dir loads fonts from a directory on the filesystem.
type Dir struct {
	basePath string
	files    map[string]string
}

// NewDir creates a Dir provider rooted at basePath.
// Returns ErrInvalidBasePath if the path is not a readable directory.
func NewDir(basePath string) (*Dir, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	return &Dir{basePath: absPath, files: DefaultFileNames}, nil
}

// WithFile overrides the file name used for one asset.
func (d *Dir) WithFile(name, file string) *Dir {
	files := make(map[string]string, len(d.files)+1)
	for k, v := range d.files {
		files[k] = v
	}
	files[name] = file
	return &Dir{basePath: d.basePath, files: files}
}

// Font implements Provider.
func (d *Dir) Font(name string) ([]byte, error) {
	file, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFontNotFound, name)
	}
	path := filepath.Join(d.basePath, file)
	// 防止配置的文件名逃出字体目录
	if !strings.HasPrefix(path, d.basePath+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %q escapes font directory", ErrFontNotFound, file)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, path)
		}
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

var _ Provider = (*Dir)(nil)
