package ui

// MenuHint is one key binding shown in the header menu.
type MenuHint struct {
	Key         string
	Description string
	// Numeric marks digit shortcuts, drawn in NumericKeyColor.
	Numeric bool
}

// Component is anything the app can push onto the page stack. Name labels it
// in the crumb trail and Hints fills the menu while it is on top.
type Component interface {
	Name() string
	Hints() []MenuHint
}

// names maps a trail of components to their labels.
func names(trail []Component) []string {
	out := make([]string, 0, len(trail))
	for _, c := range trail {
		out = append(out, c.Name())
	}
	return out
}
