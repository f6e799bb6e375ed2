package ui

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrInterrupted is returned when the user pressed Ctrl-C at a prompt.
var ErrInterrupted = errors.New("interrupted")

// ConfirmCaptcha asks the user to solve the challenge on url. It returns
// true to retry the episode and false to skip it.
func ConfirmCaptcha(url string) (bool, error) {
	fmt.Printf("\nCaptcha detected on %s\n", url)

	prompt := promptui.Prompt{
		Label:     "Solve it in the browser, then retry",
		IsConfirm: true,
		Default:   "y",
	}

	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, ErrInterrupted
	default:
		return false, err
	}
}
