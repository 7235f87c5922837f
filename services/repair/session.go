// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/AleutianMend/pkg/logging"
	"github.com/AleutianAI/AleutianMend/services/repair/llm"
)

// menuAction is one choice from the between-cycle menu.
type menuAction string

const (
	actionContinue    menuAction = "continue"
	actionHint        menuAction = "hint"
	actionSwitchModel menuAction = "model"
	actionWatch       menuAction = "watch"
	actionExit        menuAction = "exit"
)

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// ChangeSource delivers batches of changed paths for watch mode.
// Implemented by watch.Watcher.
type ChangeSource interface {
	Changes() <-chan []string
	Start(ctx context.Context)
}

// BackendSelector resolves model identifiers to backends. Implemented
// by llm.Selector.
type BackendSelector interface {
	Select(ctx context.Context, model string) (llm.Client, error)
}

// SessionController runs repair cycles under human control.
//
// The controller owns the loop the engine deliberately lacks: it runs an
// initial non-forced cycle, then repeats a menu until the developer
// exits. Cycle errors are reported and the menu continues; only a
// missing credential during a model switch ends the session.
//
// Thread Safety: Run must be called once, from one goroutine.
type SessionController struct {
	engine   *Engine
	selector BackendSelector
	watcher  ChangeSource
	log      *logging.Logger

	// in/out carry the non-TTY menu fallback and all user-facing text.
	in  io.Reader
	out io.Writer

	// interactive selects the huh menu over the line-based fallback.
	interactive bool
}

// NewSessionController wires the controller. watcher may be nil when
// watch mode is unavailable; the menu then omits the option.
func NewSessionController(engine *Engine, selector BackendSelector, watcher ChangeSource, log *logging.Logger) *SessionController {
	return &SessionController{
		engine:      engine,
		selector:    selector,
		watcher:     watcher,
		log:         log,
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Run executes the session: one initial cycle, then the menu loop.
//
// Outputs:
//
//	error - Non-nil only for unrecoverable failures (missing credential
//	        on model switch); ordinary cycle errors are printed and the
//	        session continues
func (c *SessionController) Run(ctx context.Context, st *SessionState) error {
	c.runCycle(ctx, st, false)

	reader := bufio.NewReader(c.in)
	for {
		action, err := c.menu(reader)
		if err != nil {
			return err
		}

		switch action {
		case actionContinue:
			c.runCycle(ctx, st, false)

		case actionHint:
			hint, err := c.readLine(reader, "Hint to include in future prompts: ")
			if err != nil {
				return err
			}
			if hint == "" {
				fmt.Fprintln(c.out, "Empty hint ignored.")
				continue
			}
			st.AddHint(hint)
			c.runCycle(ctx, st, true)

		case actionSwitchModel:
			model, err := c.readModel(reader)
			if err != nil {
				return err
			}
			backend, err := c.selector.Select(ctx, model)
			if err != nil {
				if errors.Is(err, llm.ErrMissingCredential) {
					return err
				}
				fmt.Fprintln(c.out, failStyle.Render("Could not switch model: "+err.Error()))
				continue
			}
			st.SwitchBackend(model, backend)
			fmt.Fprintln(c.out, infoStyle.Render("Now using "+model))
			c.runCycle(ctx, st, true)

		case actionWatch:
			// Watch mode never returns to the menu.
			return c.runWatch(ctx, st)

		case actionExit:
			fmt.Fprintln(c.out, "Session ended.")
			return nil
		}
	}
}

// runCycle executes one cycle, renders its banner, and absorbs cycle
// errors so the session can continue.
func (c *SessionController) runCycle(ctx context.Context, st *SessionState, forced bool) {
	result, err := c.engine.RunCycle(ctx, st, forced)
	if err != nil {
		c.log.Error("repair cycle failed", "error", err)
		fmt.Fprintln(c.out, failStyle.Render("Cycle error: "+err.Error()))
		return
	}

	switch {
	case result.PassedEarly:
		fmt.Fprintln(c.out, passStyle.Render("All tests already pass."))
	case result.Passed:
		fmt.Fprintln(c.out, passStyle.Render("Tests pass after repair."))
	default:
		fmt.Fprintln(c.out, failStyle.Render("Tests still failing after repair."))
	}
}

// runWatch hands control to the filesystem watcher. Each debounced
// change batch triggers one forced cycle; batches arriving during a
// cycle wait on the channel so cycles never overlap.
func (c *SessionController) runWatch(ctx context.Context, st *SessionState) error {
	if c.watcher == nil {
		return fmt.Errorf("watch mode is not available")
	}

	fmt.Fprintln(c.out, infoStyle.Render("Watching for source changes. Ctrl-C to quit."))
	go c.watcher.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-c.watcher.Changes():
			if !ok {
				return nil
			}
			fmt.Fprintln(c.out, infoStyle.Render(fmt.Sprintf("%d file(s) changed, repairing.", len(batch))))
			c.runCycle(ctx, st, true)
		}
	}
}

// menu presents the between-cycle menu and returns the chosen action.
// Unrecognized fallback input redisplays the menu.
func (c *SessionController) menu(reader *bufio.Reader) (menuAction, error) {
	if c.interactive {
		return c.menuHuh()
	}
	return c.menuPlain(reader)
}

// menuHuh renders the interactive selector.
func (c *SessionController) menuHuh() (menuAction, error) {
	options := []huh.Option[menuAction]{
		huh.NewOption("Run another repair cycle", actionContinue),
		huh.NewOption("Add a hint and repair again", actionHint),
		huh.NewOption("Switch model", actionSwitchModel),
	}
	if c.watcher != nil {
		options = append(options, huh.NewOption("Watch files and repair on change", actionWatch))
	}
	options = append(options, huh.NewOption("Exit", actionExit))

	var action menuAction
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[menuAction]().
			Title("Next step").
			Options(options...).
			Value(&action),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return actionExit, nil
		}
		return "", fmt.Errorf("reading menu selection: %w", err)
	}
	return action, nil
}

// menuPlain is the pipe-friendly fallback used when stdin or stdout is
// not a terminal.
func (c *SessionController) menuPlain(reader *bufio.Reader) (menuAction, error) {
	for {
		fmt.Fprintln(c.out, "\nNext step:")
		fmt.Fprintln(c.out, "  c) run another repair cycle")
		fmt.Fprintln(c.out, "  h) add a hint and repair again")
		fmt.Fprintln(c.out, "  m) switch model")
		if c.watcher != nil {
			fmt.Fprintln(c.out, "  w) watch files and repair on change")
		}
		fmt.Fprintln(c.out, "  q) exit")
		fmt.Fprint(c.out, "> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return actionExit, nil
			}
			return "", fmt.Errorf("reading menu selection: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "c", "continue":
			return actionContinue, nil
		case "h", "hint":
			return actionHint, nil
		case "m", "model":
			return actionSwitchModel, nil
		case "w", "watch":
			if c.watcher != nil {
				return actionWatch, nil
			}
		case "q", "quit", "exit":
			return actionExit, nil
		}
		// Anything else redisplays the menu.
	}
}

// readLine prompts for one line of free text.
func (c *SessionController) readLine(reader *bufio.Reader, prompt string) (string, error) {
	if c.interactive {
		var text string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title(strings.TrimSuffix(prompt, ": ")).Value(&text),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return "", nil
			}
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(text), nil
	}

	fmt.Fprint(c.out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readModel prompts for a model from the allow-list.
func (c *SessionController) readModel(reader *bufio.Reader) (string, error) {
	if c.interactive {
		models := llm.KnownModels()
		options := make([]huh.Option[string], 0, len(models))
		for _, m := range models {
			options = append(options, huh.NewOption(m, m))
		}
		var model string
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Model").Options(options...).Value(&model),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return "", fmt.Errorf("model selection aborted")
			}
			return "", fmt.Errorf("reading model selection: %w", err)
		}
		return model, nil
	}

	for {
		model, err := c.readLine(reader, fmt.Sprintf("Model (%s): ", strings.Join(llm.KnownModels(), ", ")))
		if err != nil {
			return "", err
		}
		if llm.IsKnownModel(model) {
			return model, nil
		}
		fmt.Fprintln(c.out, "Unknown model.")
	}
}
