package shopdesk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/shopdesk/locale"
	"github.com/eringen/shopdesk/sections"
)

// ViewFuncs holds the templ components the admin UI renders. Callers may
// replace any of them with WithViews; nil fields fall back to DefaultViews.
type ViewFuncs struct {
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(d Dashboard, csrfToken string) templ.Component
	PageEditor     func(e PageEditor, csrfToken string) templ.Component
	Preview        func(title string, body templ.Component) templ.Component
	Error          func(code int, message string) templ.Component
}

// Dashboard is the data behind the admin landing page.
type Dashboard struct {
	SiteName       string
	Pages          []Page
	Products       int
	Posts          int
	PublishedPosts int
	Media          int
	Redirects      int
	LastPublished  time.Time
	PublishEnabled bool
	Message        string
}

// PageEditor is the data behind the section builder screen.
type PageEditor struct {
	Page     Page
	Locale   locale.Locale
	Counts   map[locale.Locale]int
	Sections []sections.Section
	Editors  []sections.Editor
}

// DefaultViews returns the built-in admin components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		AdminLogin:     loginView,
		AdminDashboard: dashboardView,
		PageEditor:     pageEditorView,
		Preview:        previewView,
		Error:          errorView,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = d.AdminDashboard
	}
	if v.PageEditor == nil {
		v.PageEditor = d.PageEditor
	}
	if v.Preview == nil {
		v.Preview = d.Preview
	}
	if v.Error == nil {
		v.Error = d.Error
	}
	return v
}

func esc(s string) string { return templ.EscapeString(s) }

// layout wraps body in the admin document shell.
func layout(title, csrfToken string, body func(w *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if csrfToken != "" {
			b.WriteString(`<meta name="csrf-token" content="` + esc(csrfToken) + `">`)
		}
		b.WriteString(`<title>` + esc(title) + `</title>`)
		b.WriteString(`<link rel="stylesheet" href="/admin/assets/admin.css"></head><body>`)
		body(&b)
		b.WriteString(`<script src="/admin/assets/admin.js" defer></script></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func csrfField(token string) string {
	return `<input type="hidden" name="_csrf" value="` + esc(token) + `">`
}

func loginView(showError bool, csrfToken string) templ.Component {
	return layout("Sign in", csrfToken, func(b *strings.Builder) {
		b.WriteString(`<main class="login"><h1>Sign in</h1>`)
		if showError {
			b.WriteString(`<p class="error">Wrong password.</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/login/">` + csrfField(csrfToken))
		b.WriteString(`<label>Password <input type="password" name="password" autofocus required></label>`)
		b.WriteString(`<button type="submit">Sign in</button></form></main>`)
	})
}

func dashboardView(d Dashboard, csrfToken string) templ.Component {
	return layout(d.SiteName+" admin", csrfToken, func(b *strings.Builder) {
		b.WriteString(`<header><h1>` + esc(d.SiteName) + `</h1>`)
		b.WriteString(`<form method="post" action="/admin/logout/">` + csrfField(csrfToken) + `<button>Sign out</button></form></header>`)
		if d.Message != "" {
			b.WriteString(`<p class="notice">` + esc(d.Message) + `</p>`)
		}
		fmt.Fprintf(b, `<ul class="stats"><li>%d products</li><li>%d posts (%d published)</li><li>%d media</li><li>%d redirects</li></ul>`,
			d.Products, d.Posts, d.PublishedPosts, d.Media, d.Redirects)

		b.WriteString(`<section class="publish">`)
		if d.LastPublished.IsZero() {
			b.WriteString(`<p>Never published.</p>`)
		} else {
			b.WriteString(`<p>Last published ` + esc(d.LastPublished.Format(time.RFC1123)) + `</p>`)
		}
		if d.PublishEnabled {
			b.WriteString(`<form method="post" action="/admin/publish/">` + csrfField(csrfToken) + `<button>Publish site</button></form>`)
		}
		b.WriteString(`</section>`)

		b.WriteString(`<section class="pages"><h2>Pages</h2><table><thead><tr><th>Slug</th><th>Name</th><th>Status</th></tr></thead><tbody>`)
		for _, p := range d.Pages {
			status := "draft"
			if p.Published {
				status = "published"
			}
			href := fmt.Sprintf("/admin/pages/%s/%s/", p.ID, locale.Default)
			b.WriteString(`<tr><td><a href="` + esc(href) + `">` + esc(p.Slug) + `</a></td><td>` +
				esc(p.Names.Display(locale.Default)) + `</td><td>` + status + `</td></tr>`)
		}
		b.WriteString(`</tbody></table></section>`)
	})
}

func pageEditorView(e PageEditor, csrfToken string) templ.Component {
	title := e.Page.Names.Display(e.Locale)
	return layout(title+" sections", csrfToken, func(b *strings.Builder) {
		base := fmt.Sprintf("/admin/api/pages/%s/sections/%s", e.Page.ID, e.Locale)
		b.WriteString(`<header><a href="/admin/">Dashboard</a><h1>` + esc(title) + `</h1></header>`)

		b.WriteString(`<nav class="locales">`)
		for _, l := range locale.All {
			class := ""
			if l == e.Locale {
				class = ` class="active"`
			}
			fmt.Fprintf(b, `<a%s href="/admin/pages/%s/%s/">%s (%d)</a>`, class, e.Page.ID, l, strings.ToUpper(string(l)), e.Counts[l])
		}
		b.WriteString(`</nav>`)

		b.WriteString(`<ol class="sections" data-sortable data-endpoint="` + esc(base) + `">`)
		if len(e.Sections) == 0 {
			b.WriteString(`<li class="empty">No sections in this locale yet.</li>`)
		}
		for _, sec := range e.Sections {
			ed := sections.EditorFor(sec.Type)
			state := "enabled"
			if !sec.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(b, `<li draggable="true" data-id="%s" class="section-row %s">`, sec.ID, state)
			b.WriteString(`<span class="handle" aria-hidden="true">::</span>`)
			b.WriteString(`<strong>` + esc(ed.Label) + `</strong>`)
			if !ed.Supported {
				b.WriteString(` <em>unsupported</em>`)
			}
			fmt.Fprintf(b, ` <button data-action="toggle" data-url="/admin/api/sections/%s/toggle">%s</button>`, sec.ID, state)
			fmt.Fprintf(b, ` <button data-action="delete" data-url="/admin/api/sections/%s">delete</button>`, sec.ID)
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ol>`)

		b.WriteString(`<form class="add-section" data-endpoint="` + esc(base) + `"><select name="section_type">`)
		for _, ed := range e.Editors {
			b.WriteString(`<option value="` + esc(string(ed.Type)) + `">` + esc(ed.Label) + `</option>`)
		}
		b.WriteString(`</select><button type="submit">Add section</button></form>`)

		if e.Locale != locale.Default && len(e.Sections) == 0 {
			fmt.Fprintf(b, `<button data-action="copy" data-url="/admin/api/pages/%s/sections/%s/copy?from=%s">Copy from %s</button>`,
				e.Page.ID, e.Locale, locale.Default, strings.ToUpper(string(locale.Default)))
		}
		b.WriteString(`<p><a href="` + esc(base) + `/preview" target="_blank">Preview</a></p>`)
	})
}

func previewView(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html><head><meta charset="utf-8"><title>`+esc(title)+
			`</title><link rel="stylesheet" href="/admin/assets/admin.css"></head><body class="preview">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func errorView(code int, message string) templ.Component {
	return layout(http.StatusText(code), "", func(b *strings.Builder) {
		fmt.Fprintf(b, `<main class="error-page"><h1>%d</h1><p>%s</p><p><a href="/admin/">Back to dashboard</a></p></main>`, code, esc(message))
	})
}
