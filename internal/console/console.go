// Package console drives the wizard from an interactive terminal.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// ErrNotTerminal is returned when stdin is not interactive.
var ErrNotTerminal = errors.New("console requires an interactive terminal")

// Sentinel answers that never reach the wizard.
const (
	answerType = "\x00type"
	answerQuit = "\x00quit"
)

// Asker collects one answer for a prompt. The answer is a button token,
// or free text when typed is true.
type Asker interface {
	Ask(ctx context.Context, p domain.Prompt) (answer string, typed bool, err error)
}

// Console is a read-eval-print loop over a wizard handler.
type Console struct {
	handler ports.Handler
	userID  domain.UserID
	asker   Asker
	render  Renderer
	out     io.Writer
	logger  *slog.Logger
}

// Option configures the Console.
type Option func(*Console)

// WithAsker replaces the huh forms, mostly for tests.
func WithAsker(a Asker) Option {
	return func(c *Console) {
		c.asker = a
	}
}

// WithRenderer replaces the glamour renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Console) {
		c.render = r
	}
}

// WithOutput sets where prompts are printed (default stdout).
func WithOutput(w io.Writer) Option {
	return func(c *Console) {
		c.out = w
	}
}

// WithLogger sets the console logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New creates a console acting as userID.
func New(h ports.Handler, userID domain.UserID, opts ...Option) *Console {
	c := &Console{
		handler: h,
		userID:  userID,
		asker:   FormAsker{},
		out:     os.Stdout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.render == nil {
		c.render = NewRenderer()
	}
	return c
}

// CheckTerminal fails unless f is a terminal.
func CheckTerminal(f *os.File) error {
	if !term.IsTerminal(int(f.Fd())) {
		return ErrNotTerminal
	}
	return nil
}

// Run shows the main menu and loops until the operator quits or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	reply, err := c.handler.Handle(ctx, domain.Envelope{UserID: c.userID, Token: domain.TokenHome})
	if err != nil {
		return err
	}

	for {
		c.print(reply.Prompt)
		if reply.Denied {
			return fmt.Errorf("operator %d: %w", c.userID, domain.ErrUnauthorized)
		}

		answer, typed, err := c.asker.Ask(ctx, reply.Prompt)
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && answer == answerQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		env := domain.Envelope{UserID: c.userID, Token: answer}
		if typed {
			env = domain.Envelope{UserID: c.userID, Text: answer}
		}

		next, err := c.handler.Handle(ctx, env)
		if err != nil {
			c.logger.Error("failed to handle action", "err", err)
			fmt.Fprintln(c.out, styled(c.out, "⚠️ "+err.Error(), "#f87171"))
			continue
		}
		if next.Ignored {
			continue
		}
		reply = next
	}
}

func (c *Console) print(p domain.Prompt) {
	if p.Error != "" {
		fmt.Fprintln(c.out, styled(c.out, p.Error, "#f87171"))
	}
	// Hard breaks keep the line structure of the prompt under Markdown.
	out, err := c.render(strings.ReplaceAll(p.Text, "\n", "  \n"))
	if err != nil {
		out = p.Text + "\n"
	}
	fmt.Fprint(c.out, out)
}

func styled(w io.Writer, s, color string) termenv.Style {
	out := termenv.NewOutput(w)
	return out.String(s).Foreground(out.Color(color))
}

// FormAsker asks with huh forms: a select over the buttons, then an input
// when the operator chooses to type.
type FormAsker struct{}

func (FormAsker) Ask(ctx context.Context, p domain.Prompt) (string, bool, error) {
	opts := make([]huh.Option[string], 0, len(p.Actions)+2)
	if p.Input {
		opts = append(opts, huh.NewOption("✍️ Type an answer", answerType))
	}
	for _, a := range p.Actions {
		opts = append(opts, huh.NewOption(a.Label, a.Token))
	}
	opts = append(opts, huh.NewOption("🚪 Quit", answerQuit))

	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose").
				Options(opts...).
				Value(&choice),
		),
	).RunWithContext(ctx)
	if err != nil || choice != answerType {
		return choice, false, err
	}

	var text string
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Answer").
				Value(&text),
		),
	).RunWithContext(ctx)
	return text, true, err
}
