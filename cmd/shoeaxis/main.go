package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Track a live shoe in the terminal"`
	Odds     OddsCmd          `cmd:"" help:"Score a history against a fresh seeded shoe"`
	Simulate SimulateCmd      `cmd:"" help:"Play synthetic shoes and measure the lean signal"`
	Serve    ServeCmd         `cmd:"" help:"Serve sessions over WebSocket"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("shoeaxis"),
		kong.Description("Shoe simulation and lean scoring for baccarat"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
