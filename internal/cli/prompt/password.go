package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch is returned when a password confirmation differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// minLengthValidator rejects inputs shorter than n bytes. A zero or
// negative n disables the check.
func minLengthValidator(n int) promptui.ValidateFunc {
	if n <= 0 {
		return nil
	}
	return func(input string) error {
		if len(input) < n {
			return fmt.Errorf("password must be at least %d characters", n)
		}
		return nil
	}
}

// Password reads a masked password.
func Password(label string) (string, error) {
	return PasswordWithValidation(label, 0)
}

// PasswordWithValidation reads a masked password of at least minLength
// characters.
func PasswordWithValidation(label string, minLength int) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: minLengthValidator(minLength),
	}
	result, err := p.Run()
	return result, foldAbort(err)
}

// PasswordWithConfirmation reads a password twice and verifies both
// entries match.
func PasswordWithConfirmation(label, confirmLabel string, minLength int) (string, error) {
	password, err := PasswordWithValidation(label, minLength)
	if err != nil {
		return "", err
	}

	confirm, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", ErrPasswordMismatch
	}
	return password, nil
}
