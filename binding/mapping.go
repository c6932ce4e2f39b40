package binding

import "strings"

// Mapping 将数据列绑定到变量名；DefaultValue 在列值为空时使用。
type Mapping struct {
	Variable     string `json:"variable" yaml:"variable"`
	Column       string `json:"column" yaml:"column"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// AutoMap 按名称（忽略大小写与首尾空白）为每个变量寻找同名列，找不到时 Column 为空。
func AutoMap(headers, variables []string) []Mapping {
	index := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeKey(h)
		if _, seen := index[key]; !seen {
			index[key] = h
		}
	}
	out := make([]Mapping, 0, len(variables))
	for _, name := range variables {
		out = append(out, Mapping{Variable: name, Column: index[normalizeKey(name)]})
	}
	return out
}

// MappingOptions 控制 ApplyMappings 额外写入的保留键。
type MappingOptions struct {
	EmailColumn    string
	FilenameColumn string
}

// ApplyMappings 把原始记录转换为以变量名为键的行。
// 未映射的列原样保留，以便模板与文件名列仍能引用它们。
func ApplyMappings(records []map[string]string, mappings []Mapping, opts MappingOptions) []map[string]string {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(rec)+len(mappings)+2)
		for k, v := range rec {
			row[k] = v
		}
		for _, m := range mappings {
			val := ""
			if m.Column != "" {
				val, _ = Lookup(rec, m.Column)
			}
			if strings.TrimSpace(val) == "" {
				val = m.DefaultValue
			}
			if val == "" {
				continue
			}
			row[m.Variable] = val
		}
		if opts.EmailColumn != "" {
			if val, ok := Lookup(rec, opts.EmailColumn); ok && strings.TrimSpace(val) != "" {
				row[EmailKey] = strings.TrimSpace(val)
			}
		}
		if opts.FilenameColumn != "" {
			if val, ok := Lookup(rec, opts.FilenameColumn); ok && strings.TrimSpace(val) != "" {
				row[FilenameKey] = strings.TrimSpace(val)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// UnmappedVariables 返回既没有绑定列、也没有默认值的变量名。
func UnmappedVariables(mappings []Mapping) []string {
	var out []string
	for _, m := range mappings {
		if strings.TrimSpace(m.Column) == "" && m.DefaultValue == "" {
			out = append(out, m.Variable)
		}
	}
	return out
}
