package tui

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyQuitUpper = "Q"
	KeyCtrlC     = "ctrl+c"
	KeyEnter     = "enter"
	KeySpace     = " "
	KeyRecord    = "r"
	KeySubmit    = "t"
	KeyNext      = "n"
	KeySave      = "w"
	KeyReset     = "x"
)
