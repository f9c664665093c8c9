package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Seednode/brandhue/quiz"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	catalog        string
	port           int
	prefix         string
	profile        bool
	rules          string
	seed           uint64
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadCatalog returns the embedded brand catalog, or the one at --catalog.
func (c *Config) loadCatalog() (*quiz.Catalog, error) {
	if c.catalog == "" {
		return quiz.DefaultCatalog()
	}

	f, err := os.Open(c.catalog)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	catalog, err := quiz.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.catalog, err)
	}

	return catalog, nil
}

// loadRules returns the default scoring rules, or the ones at --rules.
func (c *Config) loadRules() (quiz.Rules, error) {
	if c.rules == "" {
		return quiz.DefaultRules(), nil
	}

	f, err := os.Open(c.rules)
	if err != nil {
		return quiz.Rules{}, err
	}
	defer f.Close()

	rules, err := quiz.LoadRules(f)
	if err != nil {
		return quiz.Rules{}, fmt.Errorf("%s: %w", c.rules, err)
	}

	return rules, nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BRANDHUE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "brandhue",
		Short:         "A brand color guessing game, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BRANDHUE_BIND)")
	fs.StringVar(&cfg.catalog, "catalog", "", "path to a brand catalog in yaml, replacing the built-in one (env: BRANDHUE_CATALOG)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: BRANDHUE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BRANDHUE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: BRANDHUE_PROFILE)")
	fs.StringVar(&cfg.rules, "rules", "", "path to a yaml file overriding the scoring rules (env: BRANDHUE_RULES)")
	fs.Uint64Var(&cfg.seed, "seed", 0, "seed for round generation; 0 picks a random seed per game (env: BRANDHUE_SEED)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: BRANDHUE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: BRANDHUE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: BRANDHUE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BRANDHUE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BRANDHUE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("brandhue v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
