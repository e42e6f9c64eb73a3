package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/scsync/internal/shared"
)

// Setup writes config.toml from the embedded template when it does not exist yet, checks that
// yt-dlp can be found and, given --curl or --curl-file, stores the SoundCloud token in .env.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file already exists", "path", configPath)
		r.writePlain("Config already present at %s\n", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("%s\n", okStyle.Render("✓ Wrote "+configPath))
	}

	ytdlp := r.config.Tools.YTDLPPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	if path, err := exec.LookPath(ytdlp); err != nil {
		r.logger.Warn("yt-dlp not found", "path", ytdlp, "error", err)
		r.writePlain("%s\n", warnStyle.Render("yt-dlp was not found ("+ytdlp+"); install it or set tools.ytdlp_path"))
	} else {
		r.writePlain("yt-dlp: %s\n", path)
	}

	saved, err := r.setupToken(cmd)
	if err != nil {
		return err
	}
	if !saved && r.config.Credentials.SoundCloud.Token == "" {
		r.writePlain("No SoundCloud token configured; set credentials.soundcloud.token or %s, or rerun with --curl.\n", shared.TokenEnvVar)
	}
	return nil
}

// setupToken extracts the OAuth token from a copied cURL command and writes it to the dotenv file.
func (r *Runner) setupToken(cmd *cli.Command) (bool, error) {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return false, nil
	}
	if curlCmd != "" && curlFile != "" {
		return false, fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var headers *shared.CurlHeaders
	var err error
	if curlFile != "" {
		headers, err = shared.ParseCurlFile(curlFile)
	} else {
		headers, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return false, err
	}

	token, err := headers.OAuthToken()
	if err != nil {
		return false, err
	}

	envPath := cmd.String("env")
	if err := shared.SaveEnvToken(envPath, token); err != nil {
		return false, err
	}
	r.config.Credentials.SoundCloud.Token = token
	r.logger.Info("saved soundcloud token", "path", envPath)
	r.writePlain("%s\n", okStyle.Render(fmt.Sprintf("✓ Saved %s to %s", shared.TokenEnvVar, envPath)))
	return true, nil
}
