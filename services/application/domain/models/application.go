package models

// Application is the only aggregate in this bounded context.
// ID is chosen by the caller and never changes after creation.
type Application struct {
	ID      string
	Name    string
	Domains []string
}

// NewApplication builds an Application, copying domains so the aggregate does
// not alias the caller's slice. A nil domains slice becomes an empty one.
func NewApplication(id, name string, domains []string) *Application {
	d := make([]string, len(domains))
	copy(d, domains)
	return &Application{ID: id, Name: name, Domains: d}
}

// PrimaryDomain returns the first domain, or false if there is none.
func (a *Application) PrimaryDomain() (string, bool) {
	if len(a.Domains) == 0 {
		return "", false
	}
	return a.Domains[0], true
}
