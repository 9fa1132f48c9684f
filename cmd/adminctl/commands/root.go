package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/credentials"
	"github.com/jrsteele09/go-admin-client/credentials/filerepo"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ADMINCTL"

// flags shared by every command
type globalFlags struct {
	cfgFile         string
	baseURL         string
	credentialsFile string
	passphrase      string
	logLevel        string
}

var flags globalFlags

// NewRootCmd builds the adminctl command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Command line access to the admin platform API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	v := viper.New()
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		initConfig(rootCmd, v)
	}

	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "",
		"config file (default is $HOME/.adminctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "",
		"API base URL, overrides API_BASE_URL")
	rootCmd.PersistentFlags().StringVar(&flags.credentialsFile, "credentials-file", "",
		"where the session credential is kept, overrides CREDENTIALS_FILE")
	rootCmd.PersistentFlags().StringVar(&flags.passphrase, "passphrase", "",
		"encrypt the credentials file with this passphrase")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn",
		"trace, debug, info, warn or error")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newRequestCmd())
	rootCmd.AddCommand(newMenuCmd())
	return rootCmd
}

// Execute runs the command tree with os.Args
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// initConfig reads in config file and ENV variables if set.
func initConfig(rootCmd *cobra.Command, v *viper.Viper) {
	if flags.cfgFile != "" {
		v.SetConfigFile(flags.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".adminctl")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}

	bindFlags(rootCmd, v)
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// --base-url is read from ADMINCTL_BASE_URL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v\n", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}

// environment returns the process environment with the CLI flags applied on top
func environment() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	if flags.baseURL != "" {
		env["API_BASE_URL"] = flags.baseURL
	}
	if flags.credentialsFile != "" {
		env["CREDENTIALS_FILE"] = flags.credentialsFile
	}
	return env
}

type session struct {
	cfg    config.Config
	store  *credentials.Store
	client *client.Client
}

// openSession wires config, logging, the credentials file and the API client.
// Credentials are kept per API base URL so several backends can be used side by side.
func openSession() (*session, error) {
	cfg, err := config.NewFromEnvironment(environment())
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.GetEnv(), flags.logLevel, os.Stderr)

	var repoOpts []filerepo.Option
	if flags.passphrase != "" {
		repoOpts = append(repoOpts, filerepo.WithPassphrase(flags.passphrase))
	}
	repo, err := filerepo.New(cfg.GetCredentialsFile(), cfg.GetAPIBaseURL(), repoOpts...)
	if err != nil {
		return nil, err
	}
	store, err := credentials.NewStore(repo, credentials.WithStoreLogger(logger))
	if err != nil {
		return nil, err
	}

	c, err := client.New(cfg, store,
		client.WithLogger(logger),
		client.WithStateListener(func(from, to client.State) {
			log.Debug().Stringer("from", from).Stringer("to", to).Msg("adminctl session state")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, store: store, client: c}, nil
}
