package cmd

import (
	"errors"

	"github.com/manifoldco/promptui"
)

var errExit = errors.New("exit requested")

// prompter asks the user for choices and text.
type prompter interface {
	Select(label string, items []string) (string, error)
	Input(label string, mask bool) (string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Select(label string, items []string) (string, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	_, choice, err := sel.Run()
	return choice, exitOnInterrupt(err)
}

func (terminalPrompter) Input(label string, mask bool) (string, error) {
	p := promptui.Prompt{Label: label}
	if mask {
		p.Mask = '*'
	}

	value, err := p.Run()
	return value, exitOnInterrupt(err)
}

func exitOnInterrupt(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}
