// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.1.0"

// newApp builds the root command with global flags and every subcommand registered.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "scsync",
		Usage:   "Reconcile a SoundCloud or YouTube collection with a local MP3 folder and acquire what is missing",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, syncCommand, acquireCommand, reportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write config.toml from the bundled template, check for yt-dlp and store the SoundCloud token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "curl",
				Usage: "A soundcloud.com request copied from the browser as cURL",
			},
			&cli.StringFlag{
				Name:  "curl-file",
				Usage: "File containing the copied cURL command",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Dotenv file receiving SC_TOKEN",
				Value: ".env",
			},
		},
		Action: r.Setup,
	}
}

// syncCommand reconciles a collection against a folder and writes the CSV artifacts
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "List a collection, scan a local folder and report missing tracks",
		ArgsUsage: "<collection_url> <local_folder>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "collection_url"},
			&cli.StringArg{Name: "local_folder"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Remote track listing (empty disables; default from config)",
			},
			&cli.StringFlag{
				Name:  "local-csv",
				Usage: "Local track listing (empty disables; default from config)",
			},
			&cli.StringFlag{
				Name:  "joined-csv",
				Usage: "Joined match report (empty disables; default from config)",
			},
			&cli.StringFlag{
				Name:  "missing-csv",
				Usage: "Missing track list (empty disables; default from config)",
			},
		},
		Action: r.Sync,
	}
}

// acquireCommand fetches the tracks missing from the local folder
func acquireCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "acquire",
		Usage:     "Acquire missing tracks, preferring native downloads over a generic fetch",
		ArgsUsage: "<collection_url> [local_folder]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "collection_url"},
			&cli.StringArg{Name: "local_folder"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Download directory (default from config)",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Acquisition log path (default from config)",
			},
			&cli.DurationFlag{
				Name:  "min-delay",
				Usage: "Minimum delay between tracks (default from config)",
			},
			&cli.DurationFlag{
				Name:  "max-delay",
				Usage: "Maximum delay between tracks (default from config)",
			},
		},
		Action: r.Acquire,
	}
}

// reportCommand summarises an acquisition log
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Summarise an acquisition log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Acquisition log path (default from config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the summary as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Report,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Interactive acquisition",
		ArgsUsage: "<collection_url> [local_folder]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "collection_url"},
			&cli.StringArg{Name: "local_folder"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Download directory (default from config)",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Acquisition log path (default from config)",
			},
		},
		Action: r.TUI,
	}
}
