package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user cancels a prompt with Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

// IsAborted reports whether err means the user cancelled a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort)
}

// foldAbort maps the library's interrupt and abort errors onto ErrAborted
// so callers have a single sentinel to check.
func foldAbort(err error) error {
	switch {
	case err == nil:
		return nil
	case IsAborted(err):
		return ErrAborted
	default:
		return err
	}
}

// Input prompts for text, offering defaultValue on Enter.
func Input(label, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}
	result, err := p.Run()
	return result, foldAbort(err)
}

// InputWithValidation prompts for text accepted by validate.
func InputWithValidation(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	result, err := p.Run()
	return result, foldAbort(err)
}

// InputRequired prompts for text that must not be empty.
func InputRequired(label string) (string, error) {
	return InputWithValidation(label, func(input string) error {
		if input == "" {
			return errors.New("a value is required")
		}
		return nil
	})
}

// InputOptional prompts for text the user may skip with Enter.
func InputOptional(label string) (string, error) {
	return Input(label+" (optional)", "")
}
