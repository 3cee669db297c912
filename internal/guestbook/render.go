package guestbook

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/language"

	"github.com/evcraddock/portfolio/internal/comment"
)

//go:embed templates/*.html
var templateFS embed.FS

// Snapshot is the data rendered into a surface.
type Snapshot struct {
	Comments []*comment.Comment
	// Locale is the viewer's language preference, in Accept-Language form
	// (e.g. "ru-RU,ru;q=0.9"). Empty means US English.
	Locale string
	// Location is the viewer's time zone. Nil means UTC.
	Location *time.Location
}

type commentRow struct {
	ID    int64
	Name  string
	Email string
	Text  string
	ISO   string
	Date  string
}

// dateFormatter renders a timestamp the way a locale writes it.
type dateFormatter func(t time.Time) string

var supportedLocales = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.Russian,
	language.German,
}

var localeFormatters = []dateFormatter{
	func(t time.Time) string { return t.Format("Jan 2, 2006, 03:04 PM") },
	func(t time.Time) string { return t.Format("2 Jan 2006, 15:04") },
	func(t time.Time) string {
		return fmt.Sprintf("%d %s %d г., %s", t.Day(), ruMonths[t.Month()-1], t.Year(), t.Format("15:04"))
	},
	func(t time.Time) string {
		return fmt.Sprintf("%d. %s %d, %s", t.Day(), deMonths[t.Month()-1], t.Year(), t.Format("15:04"))
	},
}

var ruMonths = [12]string{"янв.", "февр.", "мар.", "апр.", "мая", "июн.", "июл.", "авг.", "сент.", "окт.", "нояб.", "дек."}

var deMonths = [12]string{"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez."}

// Renderer turns comment snapshots into list markup. All user-supplied text
// is escaped.
type Renderer struct {
	tmpl    *template.Template
	matcher language.Matcher
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{
		tmpl:    tmpl,
		matcher: language.NewMatcher(supportedLocales),
	}, nil
}

// Render writes the list markup for snap to w.
func (r *Renderer) Render(w io.Writer, snap Snapshot) error {
	format := r.formatter(snap.Locale)
	loc := snap.Location
	if loc == nil {
		loc = time.UTC
	}

	rows := make([]commentRow, 0, len(snap.Comments))
	for _, c := range snap.Comments {
		local := c.CreatedAt.In(loc)
		rows = append(rows, commentRow{
			ID:    c.ID,
			Name:  c.Name,
			Email: c.Email,
			Text:  c.Comment,
			ISO:   c.CreatedAt.UTC().Format(time.RFC3339),
			Date:  format(local),
		})
	}

	if err := r.tmpl.ExecuteTemplate(w, "comments", rows); err != nil {
		return fmt.Errorf("rendering comments: %w", err)
	}
	return nil
}

// FormatDate formats t for the given locale preference.
func (r *Renderer) FormatDate(t time.Time, locale string) string {
	return r.formatter(locale)(t)
}

func (r *Renderer) formatter(locale string) dateFormatter {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return localeFormatters[0]
	}
	_, idx, _ := r.matcher.Match(tags...)
	return localeFormatters[idx]
}
