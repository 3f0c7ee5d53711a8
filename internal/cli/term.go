package cli

import "golang.org/x/term"

var termIsTerminal = term.IsTerminal

// terminalWidth falls back to 80 columns when fd is not a terminal.
func terminalWidth(fd int) int {
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
