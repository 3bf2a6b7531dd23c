package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wikiprov/wikiprov/internal/cache"
	"github.com/wikiprov/wikiprov/internal/model"
	"github.com/wikiprov/wikiprov/internal/util"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:       5 * time.Second,
		UserAgent:     "wikiprov-test/0.1",
		MaxBodyBytes:  1_000_000,
		RatePerSecond: 1000,
		RateBurst:     100,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

func writeSearchResults(w http.ResponseWriter, titles ...string) {
	var resp searchResponse
	for _, t := range titles {
		resp.Query.Search = append(resp.Query.Search, struct {
			Title string `json:"title"`
		}{Title: t})
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeParseHTML(w http.ResponseWriter, title, htmlContent string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"parse": map[string]any{
			"title": title,
			"text":  map[string]string{"*": htmlContent},
		},
	})
}

func writeParseError(w http.ResponseWriter, code, info string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "info": info},
	})
}

func TestClient_Fetch(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if ua := r.Header.Get("User-Agent"); ua != "wikiprov-test/0.1" {
			t.Errorf("Unexpected User-Agent: %q", ua)
		}
		q := r.URL.Query()
		switch q.Get("action") {
		case "query":
			if q.Get("srsearch") != "Apple company" {
				t.Errorf("Unexpected search term: %q", q.Get("srsearch"))
			}
			writeSearchResults(w, "Apple Inc.")
		case "parse":
			if q.Get("page") != "Apple Inc." {
				t.Errorf("Unexpected page title: %q", q.Get("page"))
			}
			writeParseHTML(w, "Apple Inc.", "<div><p>Apple was founded in 1976.</p><p>It is based in Cupertino.</p></div>")
		default:
			t.Errorf("Unexpected action: %q", q.Get("action"))
		}
	}))
	defer server.Close()

	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL))
	text, err := client.Fetch(context.Background(), "Apple company")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(text, "founded in 1976") {
		t.Errorf("Expected article text, got %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Error("Expected paragraph boundaries in the extracted text")
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Errorf("Expected 2 API calls (search + parse), got %d", n)
	}
}

func TestClient_Fetch_TopicNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSearchResults(w) // no results
	}))
	defer server.Close()

	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL))
	_, err := client.Fetch(context.Background(), "zxqv nonexistent")
	if !errors.Is(err, model.ErrTopicNotFound) {
		t.Fatalf("Expected ErrTopicNotFound, got %v", err)
	}
}

func TestClient_Fetch_TitleFallback(t *testing.T) {
	var parseCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("action") {
		case "query":
			writeSearchResults(w, "Mercury (disambiguation)", "Mercury (planet)")
		case "parse":
			atomic.AddInt32(&parseCalls, 1)
			if q.Get("page") == "Mercury (disambiguation)" {
				writeParseError(w, "missingtitle", "The page you specified doesn't exist.")
				return
			}
			writeParseHTML(w, "Mercury (planet)", "<p>Mercury is the smallest planet.</p>")
		}
	}))
	defer server.Close()

	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL))
	text, err := client.Fetch(context.Background(), "Mercury")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(text, "smallest planet") {
		t.Errorf("Expected the fallback title's article, got %q", text)
	}
	if n := atomic.LoadInt32(&parseCalls); n != 2 {
		t.Errorf("Expected 2 parse attempts, got %d", n)
	}
}

func TestClient_Fetch_AllTitlesMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "query":
			writeSearchResults(w, "Gone", "Also gone")
		case "parse":
			writeParseError(w, "missingtitle", "The page you specified doesn't exist.")
		}
	}))
	defer server.Close()

	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL))
	_, err := client.Fetch(context.Background(), "Gone")
	if !errors.Is(err, model.ErrTopicNotFound) {
		t.Fatalf("Expected ErrTopicNotFound, got %v", err)
	}
}

func TestClient_Fetch_CacheHitSkipsHTTP(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		switch r.URL.Query().Get("action") {
		case "query":
			writeSearchResults(w, "Apple Inc.")
		case "parse":
			writeParseHTML(w, "Apple Inc.", "<p>Apple was founded in 1976.</p>")
		}
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL), WithCache(store))

	first, err := client.Fetch(context.Background(), "Apple company")
	if err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	after := atomic.LoadInt32(&requests)

	second, err := client.Fetch(context.Background(), "Apple company")
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if first != second {
		t.Error("Cached article must match the fetched one")
	}
	if n := atomic.LoadInt32(&requests); n != after {
		t.Errorf("Expected no HTTP traffic on cache hit, got %d extra requests", n-after)
	}
}

func TestClient_Fetch_RobotsDenied(t *testing.T) {
	var apiCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		atomic.AddInt32(&apiCalls, 1)
		writeSearchResults(w, "Apple Inc.")
	}))
	defer server.Close()

	robots := util.NewRobotsChecker("wikiprov-test/0.1", 5*time.Second)
	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL), WithRobots(robots))

	_, err := client.Fetch(context.Background(), "Apple company")
	if err == nil || !strings.Contains(err.Error(), "robots.txt") {
		t.Fatalf("Expected a robots.txt denial, got %v", err)
	}
	if n := atomic.LoadInt32(&apiCalls); n != 0 {
		t.Errorf("Expected no API calls when robots.txt denies, got %d", n)
	}
}

func TestClient_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testHTTPConfig(), WithBaseURL(server.URL))
	_, err := client.Fetch(context.Background(), "Apple company")
	if err == nil {
		t.Fatal("Expected an error for a 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("Expected the status in the error, got %v", err)
	}
}

func TestExtractArticleText(t *testing.T) {
	input := `<div class="mw-parser-output">
<div class="infobox">Born: 1955</div>
<p>Steve Jobs co-founded Apple<sup class="reference">[1]</sup> in 1976.</p>
<h2>Career<span class="mw-editsection">[edit]</span></h2>
<p>He led the Macintosh project.</p>
<table><tr><td>Revenue</td><td>$1B</td></tr></table>
<ul><li>NeXT</li><li>Pixar</li></ul>
<ol class="references"><li>Citation one</li></ol>
<script>alert("x")</script>
</div>`

	text, err := ExtractArticleText(input)
	if err != nil {
		t.Fatalf("ExtractArticleText failed: %v", err)
	}

	for _, want := range []string{"co-founded Apple", "Macintosh project", "NeXT", "Pixar"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in extracted text, got %q", want, text)
		}
	}
	for _, unwanted := range []string{"[1]", "Career", "[edit]", "Revenue", "Born: 1955", "Citation one", "alert"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Expected %q to be stripped, got %q", unwanted, text)
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		t.Errorf("Expected paragraph and list-item boundaries, got %d lines", len(lines))
	}
}

func TestExtractArticleText_Empty(t *testing.T) {
	text, err := ExtractArticleText("")
	if err != nil {
		t.Fatalf("ExtractArticleText failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty output, got %q", text)
	}
}
