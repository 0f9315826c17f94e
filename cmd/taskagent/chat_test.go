package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"taskagent-portal/internal/chat"
	"taskagent-portal/internal/client"
	"taskagent-portal/internal/config"
	"taskagent-portal/internal/types"
)

func TestChatLoop(t *testing.T) {
	g := NewWithT(t)

	var mu sync.Mutex
	var got []types.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &req)
		mu.Lock()
		got = append(got, req)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"reply":"echo: `+req.Query+`"}`)
	}))
	t.Cleanup(srv.Close)

	catalog, err := config.LoadCatalog("")
	g.Expect(err).NotTo(HaveOccurred())
	w := chat.NewWindow(client.New(srv.URL, time.Second), client.NewSession(), catalog, nil)

	in := strings.NewReader("hello\n/company techco\n/quick 1\n/company nope\n/reset\n/quit\nignored\n")
	var out bytes.Buffer
	g.Expect(chatLoop(context.Background(), w, catalog, in, &out)).To(Succeed())

	text := out.String()
	g.Expect(text).To(ContainSubstring("Hello! I'm your Task Systems Agent."))
	g.Expect(text).To(ContainSubstring("echo: hello"))
	g.Expect(text).To(ContainSubstring("echo: What is my current subscription status?"))
	g.Expect(text).To(ContainSubstring(`unknown company "nope"`))
	g.Expect(text).To(ContainSubstring("new session session_"))
	g.Expect(text).NotTo(ContainSubstring("ignored"))

	g.Expect(got).To(HaveLen(2))
	g.Expect(got[0].CompanyID).To(Equal("acme"))
	g.Expect(got[1].CompanyID).To(Equal("techco"))
	g.Expect(got[0].SessionID).To(Equal(got[1].SessionID))
}

func TestChatLoopShowsErrors(t *testing.T) {
	g := NewWithT(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	catalog, _ := config.LoadCatalog("")
	w := chat.NewWindow(client.New(srv.URL, time.Second), client.NewSession(), catalog, nil)

	var out bytes.Buffer
	g.Expect(chatLoop(context.Background(), w, catalog, strings.NewReader("hi\n"), &out)).To(Succeed())
	g.Expect(out.String()).To(ContainSubstring("I apologize, but I encountered an error: HTTP error! status: 503"))
}
