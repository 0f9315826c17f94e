package server

import (
	"net/http"

	"taskagent-portal/internal/web"
)

func (s *Server) pageData(r *http.Request, title string) web.PageData {
	return web.PageData{
		Title:             title,
		CurrentPath:       r.URL.Path,
		Catalog:           s.catalog,
		WebhookConfigured: s.webhook.Configured(),
		ClientTimeoutMS:   s.cfg.ClientTimeout.Milliseconds(),
	}
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, "chat.html", s.pageData(r, "Task Agent Chat"))
}

func (s *Server) handleDocsPage(w http.ResponseWriter, r *http.Request) {
	data := s.pageData(r, "Documentation")
	data.Content = s.pages.Docs()
	s.renderPage(w, "document.html", data)
}

func (s *Server) handleChangelogPage(w http.ResponseWriter, r *http.Request) {
	data := s.pageData(r, "Changelog")
	data.Content = s.pages.Changelog()
	s.renderPage(w, "document.html", data)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data web.PageData) {
	if err := s.pages.Render(w, name, data); err != nil {
		s.logger.Error("render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
