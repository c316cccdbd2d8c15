// cmd/cabo runs a single simulated game between reference strategies and
// logs the outcome. Optional history capture is enabled through environment
// variables (REDIS_ADDR for the action queue, DATABASE_URL for the result
// store).
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/cabolab/cabo/internal/engine"
	"github.com/cabolab/cabo/internal/historian"
	"github.com/cabolab/cabo/internal/strategy"
)

func main() {
	var (
		names     = flag.String("players", "Alex,Eiji,Hugo,Leo,Octave", "comma-separated player names")
		seed      = flag.Int64("seed", 0, "rng seed (0 = time-seeded)")
		target    = flag.Int("target", 100, "cumulative score that ends the game")
		maxRounds = flag.Int("max-rounds", 0, "hard round limit (0 = none)")
		greedy    = flag.Bool("greedy", true, "make the last player greedy instead of random")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	rules := engine.DefaultRules()
	rules.TargetScore = *target
	rules.MaxRounds = *maxRounds

	nameList := strings.Split(*names, ",")
	for i := range nameList {
		nameList[i] = strings.TrimSpace(nameList[i])
	}
	players := make([]*engine.Player, len(nameList))
	for i, name := range nameList {
		var s engine.Strategy = strategy.NewRandom(*seed + int64(i) + 1)
		if *greedy && i == len(nameList)-1 {
			s = strategy.NewGreedy()
		}
		players[i] = engine.NewPlayer(name, s)
	}

	var recorder engine.Recorder
	if os.Getenv("REDIS_ADDR") != "" {
		queue, err := historian.NewQueue()
		if err != nil {
			logger.WithError(err).Fatal("failed to connect action queue")
		}
		defer queue.Close()
		recorder = queue
	}

	g, err := engine.NewGame(engine.Config{
		Rules:    rules,
		Seed:     *seed,
		Logger:   logger,
		Recorder: recorder,
	}, players...)
	if err != nil {
		logger.WithError(err).Fatal("failed to build game")
	}

	if err := g.Play(); err != nil {
		logger.WithError(err).Fatal("simulation aborted")
	}

	scores := g.Scores()
	winner := nameList[0]
	for name, s := range scores {
		if s < scores[winner] {
			winner = name
		}
	}
	logger.WithFields(logrus.Fields{
		"rounds": g.Round(),
		"scores": scores,
		"winner": winner,
	}).Info("simulation complete")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		ctx := context.Background()
		store, err := historian.NewStore(ctx, dbURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect result store")
		}
		defer store.Close()
		if err := store.SaveResults(ctx, g.ID(), g.Round(), scores, winner); err != nil {
			logger.WithError(err).Error("failed to save results")
		}
	}
}
