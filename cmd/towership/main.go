package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/towership/internal/cliconfig"
	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/upload"
)

const helpDescription = `
Ship cell tower measurements to an OpenCelliD-compatible collection service.

Highlights:
  - Uploads over TLS 1.2+, falling back to clear text only when the
    platform cannot negotiate encryption at all.
  - Watches a spool directory for CSV batches or drains a local buffer.
  - Configure via file, env (TOWERSHIP_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  towership upload --api-key <key> batch.csv
  towership watch --spool-dir /var/spool/towership
  towership import survey.csv && towership flush
  towership status
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return upload.Version
}

// cli carries configuration shared by all subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

// load resolves configuration in precedence order flags > env > file > defaults.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if err := cliconfig.SetLevel(c.cfg.LogLevel); err != nil {
		return err
	}
	c.log = cliconfig.Logger()

	logCfg := c.cfg
	logCfg.APIKey = c.cfg.MaskedAPIKey()
	c.log.Debug().Interface("config", logCfg).Msg("configuration")
	return nil
}

func newRootCommand() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "towership",
		Short:         "Ship cell tower measurements to a collection service",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	cfg := &c.cfg
	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.towership/config.toml)")
	f.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "upload endpoint URL")
	f.StringVar(&cfg.AppID, "app-id", cfg.AppID, "application identifier sent with each upload")
	f.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key for the collection service")
	f.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "connect and TLS handshake timeout")
	f.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "response read timeout")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory (default: $HOME/.towership)")
	f.StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "spool directory watched for CSV batches (default: <state-dir>/spool)")
	f.StringVar(&cfg.DBPath, "db", cfg.DBPath, "measurement buffer database (default: <state-dir>/buffer.db)")
	f.StringVar(&cfg.FilePrefix, "file-prefix", cfg.FilePrefix, "prefix of uploaded file names")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := f.MarkHidden("file-prefix"); err != nil {
		l := cliconfig.Logger()
		l.Info().Err(err).Msg("failed to hide file-prefix flag")
	}

	root.AddCommand(
		newUploadCommand(c),
		newWatchCommand(c),
		newImportCommand(c),
		newFlushCommand(c),
		newStatusCommand(c),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		l := cliconfig.Logger()
		l.Error().Err(err).Msg("towership")
		if errors.Is(err, domain.ErrInvalidAPIKey) || errors.Is(err, domain.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
