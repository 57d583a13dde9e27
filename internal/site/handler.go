package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/wolfman30/installer-man/internal/leadclient"
	"github.com/wolfman30/installer-man/internal/leads"
	"github.com/wolfman30/installer-man/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Crawlers explicitly allowed in robots.txt next to the wildcard rule.
var allowedCrawlers = []string{"GPTBot", "ChatGPT-User", "CCBot", "ClaudeBot", "anthropic-ai"}

var pagePaths = []string{"/", "/about"}

type pageData struct {
	Title        string
	Description  string
	Canonical    string
	SiteURL      string
	JSONLD       template.JS
	Content      *Content
	Gallery      []Image
	ServiceTypes []leads.Option
	TimeWindows  []leads.Option
	Messages     formMessages
}

// formMessages are the notifications the contact form script shows.
type formMessages struct {
	Success   string
	Failed    string
	Transport string
}

// Handler renders the site pages.
type Handler struct {
	content *Content
	siteURL string
	logger  *logging.Logger
	home    *template.Template
	about   *template.Template
	jsonLD  template.JS
}

// NewHandler parses the templates and prepares the structured data.
func NewHandler(content *Content, siteURL string, logger *logging.Logger) (*Handler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	funcs := template.FuncMap{"join": strings.Join}
	home, err := template.New("home").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/home.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse home template: %w", err)
	}
	about, err := template.New("about").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/about.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse about template: %w", err)
	}

	siteURL = strings.TrimRight(siteURL, "/")
	ld, err := content.LocalBusinessJSONLD(siteURL)
	if err != nil {
		return nil, fmt.Errorf("site: build json-ld: %w", err)
	}

	return &Handler{
		content: content,
		siteURL: siteURL,
		logger:  logger,
		home:    home,
		about:   about,
		jsonLD:  template.JS(ld),
	}, nil
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	b := h.content.Business
	h.render(w, h.home, pageData{
		Title:       b.Name + " — " + b.Tagline,
		Description: b.Description,
		Canonical:   h.siteURL + "/",
		Gallery:     h.content.Gallery(12),
	})
}

// About handles GET /about.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.about, pageData{
		Title:       "About Us · " + h.content.Business.Name,
		Description: "Who we are and how we work — " + h.content.Business.Name,
		Canonical:   h.siteURL + "/about",
	})
}

func (h *Handler) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	data.SiteURL = h.siteURL
	data.JSONLD = h.jsonLD
	data.Content = h.content
	data.ServiceTypes = leads.ServiceTypes
	data.TimeWindows = leads.TimeWindows
	data.Messages = formMessages{
		Success:   leadclient.SuccessMessage,
		Failed:    leadclient.FailedMessage,
		Transport: leadclient.TransportMessage,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page", "page", data.Canonical, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Robots handles GET /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, agent := range allowedCrawlers {
		fmt.Fprintf(&b, "\nUser-agent: %s\nAllow: /\n", agent)
	}
	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", h.siteURL)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap handles GET /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range pagePaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + p})
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		h.logger.Error("failed to render sitemap", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

// Info handles GET /api/site.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Business Business `json:"business"`
		Reviews  []Review `json:"reviews"`
	}{h.content.Business, h.content.Reviews})
}
