// Package project loads the YAML project file used by the command line
// generator: template image, variables, column mappings and output options.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NastasiaHalabi/CertificateGenerator/binding"
	"github.com/NastasiaHalabi/CertificateGenerator/csvparser"
	"github.com/NastasiaHalabi/CertificateGenerator/generate"
	"github.com/NastasiaHalabi/CertificateGenerator/layout"
)

// ErrInvalidProject indicates a project file that cannot be used.
var ErrInvalidProject = errors.New("invalid project file")

// Project 描述一次命令行批量生成。Template 为相对项目文件的路径。
type Project struct {
	Template  string                `yaml:"template"`
	Width     float64               `yaml:"width,omitempty"`
	Height    float64               `yaml:"height,omitempty"`
	Variables []layout.TextVariable `yaml:"variables"`
	Mappings  []binding.Mapping     `yaml:"mappings,omitempty"`
	Options   generate.Options      `yaml:"options"`

	dir string
}

// Load reads and parses a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes project YAML. Unknown keys are rejected.
func Parse(data []byte) (*Project, error) {
	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	if strings.TrimSpace(p.Template) == "" {
		return nil, fmt.Errorf("%w: template is required", ErrInvalidProject)
	}
	if len(p.Variables) == 0 {
		return nil, fmt.Errorf("%w: at least one variable is required", ErrInvalidProject)
	}
	return &p, nil
}

// TemplatePath resolves the template relative to the project file.
func (p *Project) TemplatePath() string {
	if filepath.IsAbs(p.Template) || p.dir == "" {
		return p.Template
	}
	return filepath.Join(p.dir, p.Template)
}

// VariableNames returns the variable names in declaration order.
func (p *Project) VariableNames() []string {
	names := make([]string, len(p.Variables))
	for i, v := range p.Variables {
		names[i] = v.Name
	}
	return names
}

// Request reads the template and builds a generation request over table.
// Without explicit mappings, headers are matched to variable names.
// Width and height default to the template's pixel size.
func (p *Project) Request(table *csvparser.Table) (generate.Request, []string, error) {
	tpl, err := os.ReadFile(p.TemplatePath())
	if err != nil {
		return generate.Request{}, nil, fmt.Errorf("read template: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(tpl))
	if err != nil {
		return generate.Request{}, nil, fmt.Errorf("%w: template: %v", ErrInvalidProject, err)
	}
	width, height := p.Width, p.Height
	if width <= 0 || height <= 0 {
		width, height = float64(cfg.Width), float64(cfg.Height)
	}

	mappings := p.Mappings
	if len(mappings) == 0 {
		mappings = binding.AutoMap(table.Headers, p.VariableNames())
	}
	records := binding.ApplyMappings(table.Rows, mappings, binding.MappingOptions{
		EmailColumn:    p.Options.EmailColumn,
		FilenameColumn: p.Options.FilenameColumn,
	})
	rows := make([]layout.Row, len(records))
	for i, r := range records {
		rows[i] = r
	}

	opts := p.Options
	return generate.Request{
		TemplateWidth:  width,
		TemplateHeight: height,
		Variables:      p.Variables,
		Rows:           rows,
		Options:        &opts,
		Template:       tpl,
		TemplateMime:   "image/" + format,
	}, binding.UnmappedVariables(mappings), nil
}
