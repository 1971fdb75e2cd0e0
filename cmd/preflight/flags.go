package main

import "github.com/urfave/cli"

var runFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "concurrency, c",
		Usage: "override the manifest's maximum concurrent loads",
	},
	cli.StringFlag{
		Name:  "network, n",
		Usage: "network quality hint: slow, medium or fast",
	},
	cli.StringFlag{
		Name:  "journal, j",
		Usage: "record settlements to this SQLite journal",
	},
	cli.BoolFlag{
		Name:  "watch, w",
		Usage: "stay running and fire the manifest's scheduled route prefetches",
	},
	cli.BoolFlag{
		Name:  "quiet, q",
		Usage: "suppress progress bars",
	},
}

var scanFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "base, b",
		Usage: "base url for resolving relative references",
	},
}

var reportFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "journal, j",
		Usage: "path of the SQLite journal to read",
		Value: "preflight.db",
	},
	cli.IntFlag{
		Name:  "limit, n",
		Usage: "maximum number of rows to display",
		Value: 20,
	},
}
