package layout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidVariable indicates a text variable failed validation.
var ErrInvalidVariable = errors.New("invalid variable")

var variableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate 检查单个变量的名称与几何参数；颜色不在校验范围内。
func (v TextVariable) Validate() error {
	if !variableNamePattern.MatchString(v.Name) {
		return fmt.Errorf("%w: name %q must match [A-Za-z0-9_]+", ErrInvalidVariable, v.Name)
	}
	if v.FontSize <= 0 {
		return fmt.Errorf("%w: %s: fontSize must be positive", ErrInvalidVariable, v.Name)
	}
	switch Align(strings.ToLower(string(v.TextAlign))) {
	case "", AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("%w: %s: unknown textAlign %q", ErrInvalidVariable, v.Name, v.TextAlign)
	}
	switch v.Layer {
	case "", LayerFront, LayerBack:
	default:
		return fmt.Errorf("%w: %s: unknown layer %q", ErrInvalidVariable, v.Name, v.Layer)
	}
	// 颜色无法解析时按黑色绘制，不拒绝整批
	return nil
}

// ValidateSet 校验每个变量，并要求名称在忽略大小写时唯一。
func ValidateSet(vars []TextVariable) error {
	seen := make(map[string]string, len(vars))
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return err
		}
		key := strings.ToLower(v.Name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate name %q (conflicts with %q)", ErrInvalidVariable, v.Name, prev)
		}
		seen[key] = v.Name
	}
	return nil
}
