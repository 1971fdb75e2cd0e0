package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func Execute(args []string) error {
	app := cli.App{
		Name:         "Preflight",
		HelpName:     "preflight",
		Usage:        "A priority-aware start-up resource preloader.",
		Version:      VERSION,
		UsageText:    "preflight <command> [arguments...]",
		Description:  DESCRIPTION,
		OnUsageError: usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "run",
				Aliases:                []string{"r"},
				Usage:                  "run the staged preload described by a manifest",
				Description:            RunDescription,
				OnUsageError:           usageErrorCallback,
				Action:                 run,
				Flags:                  runFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "scan",
				Aliases:                []string{"s"},
				Usage:                  "extract preload descriptors from an HTML document",
				Description:            ScanDescription,
				OnUsageError:           usageErrorCallback,
				Action:                 scanAction,
				Flags:                  scanFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:                   "report",
				Aliases:                []string{"l"},
				Usage:                  "display recent load outcomes from the journal",
				Description:            ReportDescription,
				OnUsageError:           usageErrorCallback,
				Action:                 report,
				Flags:                  reportFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action: func(ctx *cli.Context) error {
					arg := ctx.Args().First()
					if arg == "" {
						cli.ShowAppHelpAndExit(ctx, 0)
					}
					return cli.ShowCommandHelp(ctx, arg)
				},
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints installed version of preflight",
				Action: func(ctx *cli.Context) error {
					fmt.Printf("%s %s\n", ctx.App.HelpName, ctx.App.Version)
					return nil
				},
			},
		},
		UseShortOptionHandling: true,
		HideVersion:            true,
	}
	return app.Run(args)
}

func usageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	fmt.Printf("preflight: %s\n", err.Error())
	return cli.ShowCommandHelp(ctx, ctx.Command.Name)
}

func main() {
	err := Execute(os.Args)
	if err != nil {
		fmt.Printf("preflight: %s\n", err.Error())
		os.Exit(1)
	}
}
