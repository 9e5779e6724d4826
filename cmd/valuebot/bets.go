package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/alejandrodnm/valuebot/internal/application/engine"
	"github.com/alejandrodnm/valuebot/internal/domain"
)

func runRegister(ctx context.Context, app *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	n := fs.Int("n", 0, "opportunity number from today's report (1-based)")
	m := fs.Int("m", 0, "multiple number from today's report (1-based)")
	match := fs.String("match", "", "manual bet: match label")
	competition := fs.String("competition", "", "manual bet: competition")
	market := fs.String("market", "", "manual bet: market key (over_2.5, under_2.5, spread_-0.5, btts_yes)")
	odds := fs.Float64("odds", 0, "manual bet: decimal odds taken")
	prob := fs.Float64("prob", 0, "manual bet: model probability")
	stake := fs.Float64("stake", 0, "manual bet: stake (default: phase Kelly stake)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		bet domain.Bet
		err error
	)
	switch {
	case *n > 0 || *m > 0:
		bet, err = app.engine.RegisterPick(ctx, 0, engine.Pick{Opportunity: *n, Multiple: *m})
	case *match != "":
		bet, err = app.engine.Register(ctx, 0, engine.BetRequest{
			Match:       *match,
			Competition: *competition,
			Market:      *market,
			Odds:        *odds,
			Probability: *prob,
			Stake:       *stake,
		})
	default:
		fs.Usage()
		return errors.New("register needs -n, -m or -match")
	}
	if err != nil {
		return err
	}
	app.console.PrintBet("registered", bet)
	return nil
}

func runSettle(ctx context.Context, app *app, args []string) error {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	id := fs.String("id", "", "bet id")
	raw := fs.String("result", "", "won | lost | void")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("settle needs -id")
	}
	result, err := domain.ParseResult(*raw)
	if err != nil {
		return err
	}

	out, err := app.engine.Settle(ctx, 0, *id, result)
	if err != nil {
		return err
	}
	app.console.PrintSettlement(out)
	return nil
}

func runStats(ctx context.Context, app *app, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	rawPhase := fs.String("phase", "", "only bets placed in phase 1..4 or consolidation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var phase *domain.Phase
	if *rawPhase != "" {
		p, ok := domain.ParsePhase(*rawPhase)
		if !ok {
			return fmt.Errorf("unknown phase %q", *rawPhase)
		}
		phase = &p
	}
	st, err := app.engine.Stats(ctx, phase)
	if err != nil {
		return err
	}
	app.console.PrintStats(st)
	return nil
}

func runHistory(ctx context.Context, app *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", 10, "number of bets")
	if err := fs.Parse(args); err != nil {
		return err
	}
	bets, err := app.engine.History(ctx, *n)
	if err != nil {
		return err
	}
	app.console.PrintBets(bets)
	return nil
}

func runPending(ctx context.Context, app *app) error {
	bets, err := app.engine.Pending(ctx)
	if err != nil {
		return err
	}
	app.console.PrintBets(bets)
	return nil
}
