// Package mailtmpl renders the HTML bodies of outbound emails.
package mailtmpl

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/nebula-forge-api/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

var tmpl = template.Must(template.ParseFS(files, "templates/*.html"))

// VerificationCode renders the registration code email.
func VerificationCode(name, code string, ttl time.Duration) (string, error) {
	return render("verification_code.html", struct {
		Name      string
		Code      string
		ExpiresIn string
	}{name, code, humanize(ttl)})
}

type row struct {
	Label string
	Value string
}

// BuilderApplication renders the operator notification for a builder application.
func BuilderApplication(a domain.BuilderApplication) (string, error) {
	instagram := a.Instagram
	if instagram == "" {
		instagram = "N/A"
	}
	return render("builder_application.html", struct{ Rows []row }{[]row{
		{"Business/Name", a.BusinessName},
		{"Email", a.Email},
		{"Location", a.Location},
		{"Experience", a.Experience},
		{"Specialty", a.Specialty},
		{"Portfolio", a.PortfolioLinks},
		{"Social/Instagram", instagram},
	}})
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		if m := int(d / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	default:
		return d.String()
	}
}
