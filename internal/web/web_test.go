package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"taskagent-portal/internal/config"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestMarkdownIsSanitized(t *testing.T) {
	g := NewWithT(t)
	r := newRenderer(t)

	out, err := r.Markdown([]byte("# Title\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1))"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(out)).To(ContainSubstring("<h1"))
	g.Expect(string(out)).NotTo(ContainSubstring("<script"))
	g.Expect(string(out)).NotTo(ContainSubstring("javascript:"))
}

func TestDocumentsRendered(t *testing.T) {
	g := NewWithT(t)
	r := newRenderer(t)
	g.Expect(string(r.Docs())).To(ContainSubstring("<table>"))
	g.Expect(string(r.Docs())).To(ContainSubstring("N8N_URL"))
	g.Expect(string(r.Changelog())).To(ContainSubstring("Version 1.0.0"))
}

func TestRenderChatPage(t *testing.T) {
	g := NewWithT(t)
	r := newRenderer(t)
	catalog, err := config.LoadCatalog("")
	g.Expect(err).NotTo(HaveOccurred())

	rec := httptest.NewRecorder()
	err = r.Render(rec, "chat.html", PageData{
		Title:           "Task Agent Chat",
		CurrentPath:     "/",
		Catalog:         catalog,
		ClientTimeoutMS: 15000,
	})
	g.Expect(err).NotTo(HaveOccurred())
	body := rec.Body.String()
	g.Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
	g.Expect(body).To(ContainSubstring(`data-timeout-ms="15000"`))
	g.Expect(body).To(ContainSubstring("What integrations are available?"))
	g.Expect(body).To(ContainSubstring("Acme Corp"))
	g.Expect(body).To(ContainSubstring(`maxlength="500"`))
	g.Expect(body).To(ContainSubstring("Webhook URL is not configured"))
	g.Expect(body).To(MatchRegexp(`href="/"\s+class="active"`))
}

func TestRenderDocumentPage(t *testing.T) {
	g := NewWithT(t)
	r := newRenderer(t)
	catalog, _ := config.LoadCatalog("")

	rec := httptest.NewRecorder()
	g.Expect(r.Render(rec, "document.html", PageData{
		Title:             "Changelog",
		CurrentPath:       "/changelog",
		Catalog:           catalog,
		WebhookConfigured: true,
		Content:           r.Changelog(),
	})).To(Succeed())
	g.Expect(rec.Body.String()).To(ContainSubstring("Initial release"))
	g.Expect(rec.Body.String()).NotTo(ContainSubstring("not configured"))
}

func TestRenderUnknownPage(t *testing.T) {
	g := NewWithT(t)
	r := newRenderer(t)
	catalog, _ := config.LoadCatalog("")
	err := r.Render(httptest.NewRecorder(), "missing.html", PageData{Catalog: catalog})
	g.Expect(err).To(HaveOccurred())
}

func TestStaticHandler(t *testing.T) {
	g := NewWithT(t)
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat.js", nil))
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring("/api/chat"))
}
