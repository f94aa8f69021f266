package console

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the start-up banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{" ┏━┓┏━╸┏┳┓┏┓╻┏━┓╻ ╻╻╺━┓┏━┓┏━┓╺┳┓", "#818cf8"},
		{" ┣┳┛┣╸ ┃┃┃┃┗┫┣━┫┃╻┃┃┏━┛┣━┫┣┳┛ ┃┃", "#c084fc"},
		{" ╹┗╸┗━╸╹ ╹╹ ╹╹ ╹┗┻┛╹┗━╸╹ ╹╹┗╸╺┻┛", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
