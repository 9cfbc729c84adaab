package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "filecrud-cli",
	Version: version,
	Short:   "Client for the filecrud resource API",
	Long: `filecrud-cli uploads, lists, fetches, downloads and deletes learning
resources on a filecrud server.

The server is chosen from, in increasing precedence: the default profile
in ~/.filecrud/config.yaml, the profile named by --profile or
FILECRUD_PROFILE, FILECRUD_ENDPOINT, and --endpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.filecrud/config.yaml, env: FILECRUD_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: FILECRUD_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5000, env: FILECRUD_ENDPOINT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the profile file path from the flag, the
// environment or the default location, in that order.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags (flags take
// precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configFile, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		profile, profileErr := configFile.GetProfile(name)
		switch {
		case profileErr == nil:
			configs = append(configs, clientcli.ConfigFromProfile(profile))
		case name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles):
			return nil, fmt.Errorf("profile %q: %w", name, profileErr)
		}
	case errors.Is(err, fs.ErrNotExist):
		// A missing file is only an error when it was asked for.
		if name != "" || cfgFile != "" {
			return nil, err
		}
	default:
		return nil, err
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{Endpoint: endpoint})

	return clientcli.MergeConfig(configs...).WithDefaults(), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// exitError is returned when the command has already reported its failure
// and only the exit status is left to set.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
