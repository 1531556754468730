package cli

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"flag-quiz-service/internal/config"
	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/game"
)

func TestPlayGameCorrectAnswerThenQuit(t *testing.T) {
	engine, err := game.New(game.DefaultCatalog(), game.WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	r := engine.CurrentRound()
	choice := 0
	for i, c := range r.Choices {
		if c.ID == r.PromptCountryID {
			choice = i
		}
	}

	in := strings.NewReader(fmt.Sprintf("%d\n\nq\n", choice+1))
	var out bytes.Buffer
	require.NoError(t, playGame(in, &out, engine))

	text := out.String()
	require.Contains(t, text, "Tap the flag of "+r.PromptCountryID)
	require.Contains(t, text, "Correct\nПравильно")
	require.Contains(t, text, "Правильно: 1")
	require.Contains(t, text, "Попытки: 1 из 8")
	require.Equal(t, 2, engine.CurrentRound().Number)
}

func TestPlayGameHintsOnBadInput(t *testing.T) {
	engine, err := game.New(game.DefaultCatalog())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, playGame(strings.NewReader("9\nfoo\n\n"), &out, engine))

	require.Equal(t, 3, strings.Count(out.String(), "Enter 1-3"))
	require.Equal(t, domain.StateAwaitingAnswer, engine.State())
	require.Zero(t, engine.Tally().Attempts)
}

func TestPlayGameRestart(t *testing.T) {
	engine, err := game.New(game.DefaultCatalog())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, playGame(strings.NewReader("1\nr\n"), &out, engine))

	require.Equal(t, domain.StateAwaitingAnswer, engine.State())
	require.Zero(t, engine.Tally().Attempts)
}

func TestPlayGameShowsFlagsNotNames(t *testing.T) {
	engine, err := game.New(game.DefaultCatalog())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, playGame(strings.NewReader("q\n"), &out, engine))

	for _, c := range engine.CurrentRound().Choices {
		require.Contains(t, out.String(), flagEmoji[c.ID])
	}
}

func TestSettingsFromConfig(t *testing.T) {
	var cfg config.Config
	require.Equal(t, game.DefaultCatalogID, settingsFrom(cfg).DefaultCatalogID)

	cfg.Catalog.ID = "flags"
	cfg.Game.SessionLength = 4
	cfg.Game.ReshuffleEachRound = true
	settings := settingsFrom(cfg)
	require.Equal(t, "flags", settings.DefaultCatalogID)
	require.Equal(t, 4, settings.SessionLength)
	require.True(t, settings.ReshuffleEachRound)
}
