// Package combobox implements the application search combobox: a text input
// whose debounced value drives a suggestion list that can be navigated with
// the keyboard and confirmed with Enter or a click.
//
// State transitions are pure functions over State. Controller owns the
// current State, the debounce timer and the calls to the API.
package combobox

import "github.com/ghuser/appdirectory/services/application/domain/models"

// NoActive is the ActiveIndex value when no suggestion is highlighted.
const NoActive = -1

// Key is a navigation key handled by the combobox.
type Key int

const (
	KeyArrowDown Key = iota
	KeyArrowUp
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyArrowDown:
		return "ArrowDown"
	case KeyArrowUp:
		return "ArrowUp"
	case KeyEnter:
		return "Enter"
	default:
		return "Unknown"
	}
}

// State is a snapshot of the combobox.
type State struct {
	Query        string
	Applications []*models.Application
	IsLoading    bool
	ActiveIndex  int
	SelectedApp  *models.Application
}

// Initial returns the empty combobox state.
func Initial() State {
	return State{ActiveIndex: NoActive}
}

// InputChanged records the new input text. Suggestions are untouched until
// the debounced search completes.
func InputChanged(s State, text string) State {
	s.Query = text
	return s
}

// SearchStarted marks a search as in flight.
func SearchStarted(s State) State {
	s.IsLoading = true
	return s
}

// ResultsReceived replaces the suggestions. ActiveIndex is kept as is; Enter
// bounds-checks it against the new list.
func ResultsReceived(s State, apps []*models.Application) State {
	s.Applications = apps
	s.IsLoading = false
	return s
}

// SearchFailed ends the search and leaves the suggestions unchanged.
func SearchFailed(s State) State {
	s.IsLoading = false
	return s
}

// SuggestionsCleared empties the suggestion list.
func SuggestionsCleared(s State) State {
	s.Applications = nil
	return s
}

// KeyPressed applies a navigation key.
//
// ArrowDown moves to min(active+1, len-1) and ArrowUp to max(active-1, 0).
// The floors differ: ArrowDown from NoActive on an empty list stays at
// NoActive, while ArrowUp never returns below 0. Enter selects the active
// suggestion when 0 <= active < len and is ignored otherwise.
func KeyPressed(s State, k Key) State {
	n := len(s.Applications)
	switch k {
	case KeyArrowDown:
		s.ActiveIndex = min(s.ActiveIndex+1, n-1)
	case KeyArrowUp:
		s.ActiveIndex = max(s.ActiveIndex-1, 0)
	case KeyEnter:
		if s.ActiveIndex >= 0 && s.ActiveIndex < n {
			return SuggestionSelected(s, s.Applications[s.ActiveIndex])
		}
	}
	return s
}

// SuggestionSelected confirms app: it becomes SelectedApp, its name becomes
// the query, and the list is cleared.
func SuggestionSelected(s State, app *models.Application) State {
	s.SelectedApp = app
	s.Query = app.Name
	s.Applications = nil
	s.ActiveIndex = NoActive
	return s
}
