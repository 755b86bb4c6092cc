package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/renderer"
)

// errBye ends a session.
var errBye = errors.New("bye")

const prompt = "pt> "

const sessionHelp = `# Commands

| Command | Description |
|:---|:---|
| list | show the watch-list |
| refresh | fetch the latest quotes |
| add <query> | look up a ticker or company and add it to the watch-list |
| show <symbol> | show an instrument with its chart and position |
| analyze <symbol> | ask for an analysis of an instrument |
| news | show the latest market headlines |
| buy <symbol> <qty> | buy at the current price |
| sell <symbol> <qty> | sell at the current price |
| portfolio | show cash, positions and net liquidation value |
| help | show this help |
| bye | leave |
`

// Session is an interactive trading session over a Terminal.
type Session struct {
	term   *papertrade.Terminal
	w      io.Writer
	render func(md string) string
}

// NewSession creates a session writing to 'w'.
func NewSession(term *papertrade.Terminal, w io.Writer) *Session {
	return &Session{term: term, w: w, render: renderMarkdown}
}

func (s *Session) print(md string) { fmt.Fprint(s.w, s.render(md)) }

// Run reads commands from 'lr' until "bye", the end of the input or ctx is done.
// Commands listed in 'prompts' are executed first, as if they were typed.
func (s *Session) Run(ctx context.Context, lr LineReader, prompts ...string) error {
	fmt.Fprintln(s.w, "Welcome to the paper trading terminal. Type 'help' for the commands, 'bye' to exit.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var line string
		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			line, prompts = prompts[0], prompts[1:]
			fmt.Fprintln(s.w, prompt+line)
		} else {
			var err error
			line, err = lr.ReadLine(prompt)
			if err == io.EOF {
				return nil // Clean exit on Ctrl+D
			}
			if err != nil {
				return err
			}
		}

		err := s.Exec(ctx, line)
		switch {
		case errors.Is(err, errBye):
			return nil
		case err != nil:
			fmt.Fprintf(s.w, "error: %v\n", err)
		}
	}
}

// Exec executes a single command line.
func (s *Session) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "bye", "exit", "quit":
		return errBye
	case "help":
		s.print(sessionHelp)
	case "list":
		s.print(renderer.RenderWatchList(renderer.NewWatchList(s.term)))
	case "refresh":
		return s.refresh(ctx)
	case "add":
		return s.add(ctx, strings.Join(args, " "))
	case "show":
		return s.show(args)
	case "analyze":
		return s.analyze(ctx, args)
	case "news":
		n, err := s.term.News(ctx)
		if err != nil {
			return err
		}
		s.print(renderer.RenderNews(n))
	case "buy", "sell":
		return s.trade(papertrade.Side(strings.ToUpper(name)), args)
	case "portfolio":
		s.print(renderer.RenderHolding(s.term.Holding()))
	default:
		return fmt.Errorf("unknown command %q, type 'help' for the list of commands", name)
	}
	return nil
}

func (s *Session) refresh(ctx context.Context) error {
	status, err := s.term.Refresh(ctx)
	if errors.Is(err, papertrade.ErrInFlight) {
		return errors.New("a refresh is already in progress")
	}
	if err != nil {
		// the watch-list is still valid, show it with the failed status.
		fmt.Fprintf(s.w, "%s: %v\n", status, err)
	}
	s.print(renderer.RenderWatchList(renderer.NewWatchList(s.term)))
	return nil
}

func (s *Session) add(ctx context.Context, query string) error {
	in, added, err := s.term.Search(ctx, query)
	switch {
	case errors.Is(err, papertrade.ErrEmptyQuery):
		return errors.New("usage: add <ticker or company name>")
	case errors.Is(err, papertrade.ErrInFlight):
		return errors.New("a lookup is already in progress")
	case errors.Is(err, papertrade.ErrNotFound):
		fmt.Fprintf(s.w, "NOT FOUND: %s\n", strings.TrimSpace(query))
		return nil
	case err != nil:
		return err
	}
	if added {
		fmt.Fprintf(s.w, "%s added to the watch-list\n", in.Symbol)
	}
	s.print(renderer.RenderDetail(renderer.NewDetail(in, s.term.Ledger())))
	return nil
}

func (s *Session) show(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <symbol>")
	}
	in, ok := s.term.Registry().ByIdentifier(args[0])
	if !ok {
		return fmt.Errorf("%w: %q", papertrade.ErrUnknownSymbol, args[0])
	}
	s.print(renderer.RenderDetail(renderer.NewDetail(in, s.term.Ledger())))
	return nil
}

func (s *Session) analyze(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: analyze <symbol>")
	}
	a, err := s.term.Analyze(ctx, args[0])
	if err != nil {
		return err
	}
	s.print(renderer.RenderAnalysis(papertrade.CanonicalSymbol(args[0]), a))
	return nil
}

func (s *Session) trade(side papertrade.Side, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <symbol> <quantity>", strings.ToLower(string(side)))
	}
	qty, err := papertrade.ParseQuantity(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", args[1], err)
	}
	var fill papertrade.Fill
	if side == papertrade.SideBuy {
		fill, err = s.term.Buy(args[0], qty)
	} else {
		fill, err = s.term.Sell(args[0], qty)
	}
	if errors.Is(err, papertrade.ErrRejected) {
		fmt.Fprintf(s.w, "REJECTED: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	s.print(renderer.RenderFill(fill))
	return nil
}
