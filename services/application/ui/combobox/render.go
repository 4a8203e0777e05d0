package combobox

import (
	"fmt"
	"strings"
)

// DomainPlaceholder is shown for an application without domains.
const DomainPlaceholder = "(no domain)"

// IconPath returns the conventional icon asset path for an application id.
func IconPath(id string) string {
	return "icons/ic_" + id + ".svg"
}

// Row is one rendered suggestion.
type Row struct {
	Icon   string
	Name   string
	Domain string
	Active bool
}

// View is the rendered form of a State.
type View struct {
	Query    string
	Loading  bool
	Rows     []Row // empty when the list is hidden
	Selected string
}

// Render builds the View for s.
func Render(s State) View {
	v := View{Query: s.Query, Loading: s.IsLoading}
	if s.SelectedApp != nil {
		v.Selected = s.SelectedApp.Name
	}
	for i, app := range s.Applications {
		domain, ok := app.PrimaryDomain()
		if !ok {
			domain = DomainPlaceholder
		}
		v.Rows = append(v.Rows, Row{
			Icon:   IconPath(app.ID),
			Name:   app.Name,
			Domain: domain,
			Active: i == s.ActiveIndex,
		})
	}
	return v
}

// String renders v as plain text for a terminal.
func (v View) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "> %s\n", v.Query)
	if v.Loading {
		b.WriteString("  loading...\n")
	}
	for i, r := range v.Rows {
		marker := " "
		if r.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. [%s] %s - %s\n", marker, i+1, r.Icon, r.Name, r.Domain)
	}
	if v.Selected != "" {
		fmt.Fprintf(&b, "  selected: %s\n", v.Selected)
	}
	return b.String()
}
