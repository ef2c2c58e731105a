package wizard

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/pverge/blindtest/internal/core"
)

// Genres offered by the genre picker.
var Genres = []string{"pop", "rock", "edm", "reggaeton"}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PromptSource interactively picks a track source when none was given on
// the command line. Returns the source kind and its reference, or empty
// values if the user cancelled.
func PromptSource() (core.Source, string, error) {
	var kind string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the tracks come from?").
				Options(
					huh.NewOption("A playlist", string(core.SourcePlaylist)),
					huh.NewOption("A genre", string(core.SourceGenre)),
				).
				Value(&kind),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}

	switch core.Source(kind) {
	case core.SourceGenre:
		return promptGenre()
	default:
		return promptPlaylist()
	}
}

func promptGenre() (core.Source, string, error) {
	var genre string
	options := make([]huh.Option[string], len(Genres))
	for i, g := range Genres {
		options[i] = huh.NewOption(g, g)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pick a genre").
				Options(options...).
				Value(&genre),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return core.SourceGenre, genre, nil
}

func promptPlaylist() (core.Source, string, error) {
	var url string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Playlist URL or ID").
				Placeholder("https://open.spotify.com/playlist/...").
				Value(&url),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return core.SourcePlaylist, url, nil
}
