package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// ErrNothingToPick is returned when the picker has no entity to offer.
var ErrNothingToPick = errors.New("no entity to pick from")

// PickerOptions lists the entities offered by PickEntity, restricted to
// culture when it is non-empty.
func PickerOptions(entities []model.Entity, culture string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(entities))
	for _, e := range entities {
		if culture != "" && e.Culture != culture {
			continue
		}
		opts = append(opts, huh.NewOption(e.Name, e.Slug))
	}
	return opts
}

// PickEntity asks for the initial focal entity. entities should already be
// in display order. Without a terminal the form falls back to accessible
// mode.
func PickEntity(entities []model.Entity, culture string) (string, error) {
	opts := PickerOptions(entities, culture)
	if len(opts) == 0 {
		return "", ErrNothingToPick
	}

	slug := opts[0].Value
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Quelle figure placer au centre ?").
				Options(opts...).
				Filtering(true).
				Height(15).
				Value(&slug),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return "", err
	}
	return slug, nil
}
