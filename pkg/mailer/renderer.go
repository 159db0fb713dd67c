package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown templates with YAML front matter into HTML and
// plain-text bodies.
type Renderer struct {
	fs     fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy // nil unless raw HTML is allowed

	// Caches hold parsed structure only, never rendered output.
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
	cfg       RendererConfig

	mu sync.RWMutex
}

type parsedTemplate struct {
	meta *Template
	body *texttemplate.Template
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	TemplateDir string // Default: "."
	LayoutDir   string // Default: "layouts"

	// AllowRawHTML passes inline HTML in templates through to the output.
	// The resulting HTML is sanitized with bluemonday's UGC policy.
	AllowRawHTML bool
}

// NewRenderer creates a new renderer with default config.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a new renderer with custom config.
func NewRendererWithConfig(filesystem fs.FS, cfg RendererConfig) *Renderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}

	opts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
	}
	var policy *bluemonday.Policy
	if cfg.AllowRawHTML {
		opts = append(opts, goldmark.WithRendererOptions(html.WithUnsafe()))
		policy = bluemonday.UGCPolicy()
	}

	return &Renderer{
		fs:        filesystem,
		md:        goldmark.New(opts...),
		policy:    policy,
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
		cfg:       cfg,
	}
}

// RenderResult contains the rendered bodies and the template front matter.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string // Processed markdown, before HTML conversion
}

// Subject returns the Subject front matter value, if any.
func (r *RenderResult) Subject() (string, bool) {
	s, ok := r.Metadata["Subject"].(string)
	return s, ok && s != ""
}

// Render executes a markdown template with data and wraps the HTML in layout.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := tmpl.body.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %s: markdown: %v", ErrRenderFailed, name, err)
	}

	body := content.String()
	if r.policy != nil {
		body = r.policy.Sanitize(body)
	}

	layoutTmpl, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := layoutTmpl.Execute(&out, map[string]any{
		"Content":  template.HTML(body), //nolint:gosec // produced by goldmark, sanitized when raw HTML is enabled
		"Metadata": tmpl.meta.Metadata,
	}); err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{
		Metadata: tmpl.meta.Metadata,
		HTML:     out.String(),
		Text:     markdown.String(),
	}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.templates[name]; ok {
		return cached, nil
	}

	raw, err := fs.ReadFile(r.fs, path.Join(r.cfg.TemplateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	meta, err := ParseTemplate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	body, err := texttemplate.New(name).Parse(meta.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	cached = &parsedTemplate{meta: meta, body: body}
	r.templates[name] = cached
	return cached, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	cached, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layouts[name]; ok {
		return cached, nil
	}

	raw, err := fs.ReadFile(r.fs, path.Join(r.cfg.LayoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
	}

	r.layouts[name] = tmpl
	return tmpl, nil
}
