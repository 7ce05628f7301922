package delivery

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/de-tools/site-digest/pkg/models/domain"
)

const bodyTemplate = `{{.Title}}
Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}}

{{range .HeaderMetadata}}{{.Key}}: {{printf "%.0f" .Value}}
{{end}}{{range .Sections}}
=== {{.TitleKey}} ===
{{range .Fields}}{{if not .Hidden}}- {{.Key}}: {{printf "%.2f" .Value}} (previous: {{compare .Compare}})
{{end}}{{end}}{{end}}`

var bodyTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"compare": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
}).Parse(bodyTemplate))

// RenderBody renders the plain-text representation of a report, used as the
// email body and the CLI output.
func RenderBody(report *domain.Report) (string, error) {
	var sb strings.Builder
	if err := bodyTmpl.Execute(&sb, report); err != nil {
		return "", fmt.Errorf("failed to render report body: %w", err)
	}
	return sb.String(), nil
}
