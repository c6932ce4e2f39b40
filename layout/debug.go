package layout

import (
	"encoding/json"
	"os"
)

// DebugPage 记录一页（即一行数据）的全部绘制指令。
type DebugPage struct {
	Row          int               `json:"row"`
	Size         Size              `json:"size"`
	Instructions []DrawInstruction `json:"instructions"`
}

// WriteDebugJSON 将排版结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(pages []DebugPage, path string) error {
	if len(pages) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
