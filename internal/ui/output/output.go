// Package output creates the terminal writers javelin prints styled text to.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Profile picks the color profile: none when NO_COLOR or JAVELIN_NO_COLOR is set,
// otherwise whatever the terminal advertises.
func Profile(getenv func(string) string) termenv.Profile {
	if getenv("NO_COLOR") != "" || getenv("JAVELIN_NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New wraps w, or stderr when w is nil, in a termenv.Output using Profile.
func New(w io.Writer) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w,
		termenv.WithProfile(Profile(os.Getenv)),
		termenv.WithTTY(true),
	)
}
