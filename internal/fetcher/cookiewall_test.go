package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/skoeller/rankscrape/internal/config"
	"github.com/skoeller/rankscrape/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const wallHTML = `<!DOCTYPE html>
<html><body>
<form method="post" action="/cookiewall/Save">
  <input type="hidden" name="ReturnUrl" value="/ranking/category.aspx?id=205" />
  <button type="submit">Akzeptieren</button>
</form>
</body></html>`

const contentHTML = `<html><body><table class="ruler"><tr><th>Rang</th></tr></table></body></html>`

func testConfig(timeoutRetries int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.HTTP.MaxRetries = timeoutRetries
	cfg.HTTP.RetryDelay = time.Millisecond
	return cfg
}

func TestIsCookieWall(t *testing.T) {
	if !IsCookieWall([]byte(wallHTML)) {
		t.Error("expected wall page to be detected")
	}
	if IsCookieWall([]byte(contentHTML)) {
		t.Error("content page misdetected as wall")
	}
	if IsCookieWall([]byte(`<form action="/login/Save"></form>`)) {
		t.Error("unrelated form misdetected as wall")
	}
}

func TestConsentReturnURL(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wallHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	got, err := consentReturnURL(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/ranking/category.aspx?id=205" {
		t.Errorf("expected return url, got %q", got)
	}

	noInput, _ := goquery.NewDocumentFromReader(strings.NewReader(`<form action="/cookiewall/Save"></form>`))
	if _, err := consentReturnURL(noInput); !errors.Is(err, types.ErrConsentReturnURL) {
		t.Errorf("expected ErrConsentReturnURL, got %v", err)
	}

	noForm, _ := goquery.NewDocumentFromReader(strings.NewReader(`<p>hi</p>`))
	if _, err := consentReturnURL(noForm); !errors.Is(err, types.ErrConsentFormNotFound) {
		t.Errorf("expected ErrConsentFormNotFound, got %v", err)
	}
}

func TestFetchPassesCookieWall(t *testing.T) {
	var savePosts int
	mux := http.NewServeMux()
	mux.HandleFunc("/ranking/category.aspx", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("consent"); err != nil {
			w.Write([]byte(wallHTML))
			return
		}
		w.Write([]byte(contentHTML))
	})
	mux.HandleFunc("/cookiewall/Save", func(w http.ResponseWriter, r *http.Request) {
		savePosts++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to save endpoint, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("ReturnUrl"); got != "/ranking/category.aspx?id=205" {
			t.Errorf("unexpected ReturnUrl %q", got)
		}
		if got := r.PostForm.Get("SettingsOpen"); got != "false" {
			t.Errorf("unexpected SettingsOpen %q", got)
		}
		if got := r.PostForm["CookiePurposes"]; len(got) != 4 {
			t.Errorf("expected 4 cookie purposes, got %v", got)
		}
		http.SetCookie(w, &http.Cookie{Name: "consent", Value: "yes", Path: "/"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f, err := NewHTTPFetcher(testConfig(0), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	defer f.Close()

	resp, err := f.Fetch(context.Background(), srv.URL+"/ranking/category.aspx?id=205")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if savePosts != 1 {
		t.Errorf("expected one consent post, got %d", savePosts)
	}
	if !strings.Contains(resp.Text(), "table class=\"ruler\"") {
		t.Errorf("expected content page after consent, got %q", resp.Text())
	}
}

func TestFetchUnparseableWallReturnedAsIs(t *testing.T) {
	// Wall form present but without the ReturnUrl input.
	broken := `<form action="/cookiewall/Save"><button>OK</button></form>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(broken))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(testConfig(0), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	defer f.Close()

	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !strings.Contains(resp.Text(), "cookiewall/Save") {
		t.Errorf("expected the wall page back, got %q", resp.Text())
	}
}
