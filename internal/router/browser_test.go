package router

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// TestContactFormInBrowser drives the enhanced contact form in a headless
// browser. It needs a local Chrome or Chromium and is skipped otherwise.
func TestContactFormInBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("skipping browser test: no Chrome or Chromium found")
	}

	srv := httptest.NewServer(newTestRouter(t, "/", nil))
	defer srv.Close()

	l := launcher.New().Bin(bin).Headless(true)
	defer l.Cleanup()
	controlURL, err := l.Launch()
	if err != nil {
		t.Skipf("skipping browser test: launch: %v", err)
	}

	browser := rod.New().ControlURL(controlURL).Timeout(30 * time.Second)
	if err := browser.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer browser.Close()

	page := browser.MustPage(srv.URL + "/contact").MustWaitLoad()

	page.MustElement("#name").MustInput("Ada Lovelace")
	page.MustElement("#email").MustInput("ada@example.com")
	page.MustElement("#subject").MustInput("Hello")
	page.MustElement("#message").MustInput("Tell me about Vite.")
	page.MustElement("[data-submit]").MustClick()

	page.MustElement("#toast-region li[data-toast]")
	if n := len(page.MustElements("#toast-region li[data-toast]")); n != 1 {
		t.Errorf("toasts: got %d, want 1", n)
	}
	for _, id := range []string{"#name", "#email", "#subject", "#message"} {
		if v := page.MustElement(id).MustProperty("value").String(); v != "" {
			t.Errorf("%s after success: got %q, want empty", id, v)
		}
	}

	page.MustElement(`a[href="/about"]`).MustClick()
	page.MustElement(`[data-view="/about"]`)
	if n := len(page.MustElements("footer")); n != 1 {
		t.Errorf("footers after navigation: got %d, want 1", n)
	}
}
