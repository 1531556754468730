package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flag-quiz-service/internal/config"
	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
)

// flagEmoji stands in for flag images on a terminal.
var flagEmoji = map[string]string{
	"Estonia": "🇪🇪",
	"France":  "🇫🇷",
	"Germany": "🇩🇪",
	"Ireland": "🇮🇪",
	"Italy":   "🇮🇹",
	"Nigeria": "🇳🇬",
	"Poland":  "🇵🇱",
	"Spain":   "🇪🇸",
	"UK":      "🇬🇧",
	"US":      "🇺🇸",
}

// NewPlayCmd runs the quiz interactively on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the flag quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			opts := []game.Option{game.WithReshuffleEachRound(cfg.Game.ReshuffleEachRound)}
			if cfg.Game.SessionLength > 0 {
				opts = append(opts, game.WithSessionLength(cfg.Game.SessionLength))
			}
			engine, err := game.New(game.DefaultCatalog(), opts...)
			if err != nil {
				return err
			}
			return playGame(cmd.InOrStdin(), cmd.OutOrStdout(), engine)
		},
	}
}

// playGame reads one command per line: 1-3 answers, an empty line continues
// after a result, r restarts and q quits.
func playGame(in io.Reader, out io.Writer, engine *game.Engine) error {
	ui := &terminalUI{out: out}
	defer engine.Subscribe(ui.render)()

	fmt.Fprintln(out, "Guess the Flag")
	ui.render(engine.Snapshot())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch {
		case line == "q":
			return nil
		case line == "r":
			engine.Restart()
		case engine.State() == domain.StateAwaitingAcknowledgment:
			if err := engine.Acknowledge(); err != nil {
				return err
			}
		default:
			n, err := strconv.Atoi(line)
			if err != nil {
				ui.hint()
				continue
			}
			if _, err := engine.SubmitAnswer(n - 1); err != nil {
				if errors.Is(err, domain.ErrInvalidChoice) {
					ui.hint()
					continue
				}
				return err
			}
		}
	}
	return scanner.Err()
}

type terminalUI struct {
	out io.Writer
}

func (u *terminalUI) render(s domain.Snapshot) {
	if s.Pending != nil {
		fmt.Fprintf(u.out, "\n%s\n%s\n", s.Pending.Title, s.Pending.Message)
		u.tally(s.Tally)
		fmt.Fprintln(u.out, "Press Enter to continue")
		return
	}

	fmt.Fprintf(u.out, "\nTap the flag of %s\n", s.Round.PromptCountryID)
	for i, c := range s.Round.Choices {
		fmt.Fprintf(u.out, "  %d) %s\n", i+1, u.flag(c))
	}
	u.tally(s.Tally)
}

func (u *terminalUI) tally(t domain.Tally) {
	fmt.Fprintf(u.out, "Правильно: %d\nОшибка: %d\nПопытки: %d из %d\n",
		t.CorrectCount, t.WrongCount, t.Attempts, t.SessionLength)
}

func (u *terminalUI) hint() {
	fmt.Fprintf(u.out, "Enter 1-%d, r to restart or q to quit\n", domain.ChoicesPerRound)
}

func (u *terminalUI) flag(c domain.Choice) string {
	if emoji, ok := flagEmoji[c.ID]; ok {
		return emoji
	}
	return c.ImageRef
}
