package session

// View identifies the top-level screen of an interactive session.
type View int

// View values.
const (
	ViewHome View = iota
	ViewList
	ViewAdd
	ViewDelete
)

// Tabs lists every view in header order.
var Tabs = []View{ViewHome, ViewList, ViewAdd, ViewDelete}

// String returns the tab label for the view.
func (v View) String() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewList:
		return "Notes"
	case ViewAdd:
		return "Add"
	case ViewDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// TabIndex returns the position of the view in the header. Only rendering
// depends on it.
func (v View) TabIndex() int {
	for i, tab := range Tabs {
		if tab == v {
			return i
		}
	}
	return -1
}

// ShowsNotes reports whether the view renders the note snapshot with a
// selection cursor.
func (v View) ShowsNotes() bool {
	return v == ViewList || v == ViewDelete
}
