package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/spboyer/modeleval/internal/recommend"
)

// Interactive menu choices.
const (
	choiceQuick      = "quick"
	choiceFull       = "full"
	choiceRecommend  = "recommend"
	choiceCategories = "categories"
	choiceHistory    = "history"
	choiceQuit       = "quit"
)

// promptMenu is a test hook for replacing the interactive menu in tests.
var promptMenu = defaultPromptMenu

// promptText is a test hook for replacing the free-text input in tests.
var promptText = defaultPromptText

func defaultPromptMenu(in io.Reader, out io.Writer) (string, error) {
	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("Quick test (5 prompts)", choiceQuick),
					huh.NewOption("Full evaluation (all prompts)", choiceFull),
					huh.NewOption("Recommend a model for a prompt", choiceRecommend),
					huh.NewOption("Recommendations by category", choiceCategories),
					huh.NewOption("Show performance history", choiceHistory),
					huh.NewOption("Quit", choiceQuit),
				).
				Value(&choice),
		),
	).WithInput(in).WithOutput(out).Run()
	return choice, err
}

func defaultPromptText(in io.Reader, out io.Writer, title string) (string, error) {
	var text string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&text).
				Validate(func(s string) error {
					if len([]rune(strings.TrimSpace(s))) < recommend.MinPromptLength {
						return fmt.Errorf("enter at least %d characters", recommend.MinPromptLength)
					}
					return nil
				}),
		),
	).WithInput(in).WithOutput(out).Run()
	return text, err
}

// runInteractive shows the menu until the user quits. Errors from a chosen
// action are printed and the menu is shown again.
func runInteractive(cmd *cobra.Command, global *globalOptions) error {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	for {
		choice, err := promptMenu(in, out)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("menu failed: %w", err)
		}

		var actionErr error
		switch choice {
		case choiceQuick:
			actionErr = runEval(cmd, global, &evalOptions{format: "default"}, true)
		case choiceFull:
			actionErr = runEval(cmd, global, &evalOptions{format: "default"}, false)
		case choiceRecommend:
			actionErr = interactiveRecommend(cmd, global)
		case choiceCategories:
			actionErr = withApp(cmd, global, func(a *app) error {
				return recommendCategories(out, a.engine, &recommendOptions{})
			})
		case choiceHistory:
			actionErr = withApp(cmd, global, func(a *app) error {
				return printHistory(out, a.store, a.store.Entries())
			})
		default:
			return nil
		}

		if actionErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", actionErr) //nolint:errcheck
		}
		fmt.Fprintln(out) //nolint:errcheck
	}
}

func interactiveRecommend(cmd *cobra.Command, global *globalOptions) error {
	text, err := promptText(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter your prompt")
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	return withApp(cmd, global, func(a *app) error {
		return recommendPrompt(cmd.OutOrStdout(), a.engine, text, &recommendOptions{scores: true})
	})
}

// withApp builds the app for one read-only action and releases it afterwards.
func withApp(cmd *cobra.Command, global *globalOptions, fn func(a *app) error) error {
	a, err := newApp(cmd.Context(), global)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())
	return fn(a)
}
