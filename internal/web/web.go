// Package web holds the browser front end: page templates, the chat script and
// the Markdown documents shown on the documentation and changelog pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"taskagent-portal/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

// NavItem is one sidebar link.
type NavItem struct {
	Name string
	Href string
}

var Navigation = []NavItem{
	{Name: "Chat", Href: "/"},
	{Name: "Documentation", Href: "/docs"},
	{Name: "Changelog", Href: "/changelog"},
}

// PageData contains common data for all pages.
type PageData struct {
	Title             string
	CurrentPath       string
	Catalog           *config.Catalog
	WebhookConfigured bool
	ClientTimeoutMS   int64
	Content           template.HTML
}

// Renderer renders pages. Documents are converted once at construction.
type Renderer struct {
	base      *template.Template
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	docs      template.HTML
	changelog template.HTML
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New("").Funcs(template.FuncMap{
		"nav": func() []NavItem { return Navigation },
	}).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{
		base:   base,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
	if r.docs, err = r.renderDocument("content/docs.md"); err != nil {
		return nil, err
	}
	if r.changelog, err = r.renderDocument("content/changelog.md"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Docs() template.HTML      { return r.docs }
func (r *Renderer) Changelog() template.HTML { return r.changelog }

// Markdown converts src to sanitized HTML.
func (r *Renderer) Markdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

func (r *Renderer) renderDocument(path string) (template.HTML, error) {
	src, err := contentFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return r.Markdown(src)
}

// Render clones the layout and parses the page template into the clone, so
// each page can define its own "content" block.
func (r *Renderer) Render(w http.ResponseWriter, name string, data PageData) error {
	tmpl, err := r.base.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}
	if _, err := tmpl.ParseFS(templatesFS, "templates/"+name); err != nil {
		return fmt.Errorf("parse page template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded scripts and styles.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
