package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/clientcli"
)

const healthCheckTimeout = 5 * time.Second

// errCancelled ends a command quietly after the user declined a prompt.
var errCancelled = errors.New("cancelled")

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage the server profiles stored in ~/.filecrud/config.yaml.

Each profile names a filecrud server endpoint. Pick one per command with
--profile or FILECRUD_PROFILE; otherwise the default profile is used.`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles, marking the default with *",
	Args:  cobra.NoArgs,
	RunE:  runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add or update a profile.

Without --url the endpoint and default choice are prompted for. The
server's health check runs before saving unless --skip-check is given.`,
	Example: `  filecrud-cli configure add local
  filecrud-cli configure add prod --url https://files.example.com --default`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile, or the default one when no name is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigureShow,
}

var (
	configureYes       bool
	configureURL       string
	configureDefault   bool
	configureSkipCheck bool
)

func init() {
	configureCmd.AddCommand(configureListCmd, configureAddCmd, configureRemoveCmd, configureSetDefaultCmd, configureShowCmd)

	configureRemoveCmd.Flags().BoolVarP(&configureYes, "yes", "y", false, "remove without confirmation")

	configureAddCmd.Flags().StringVar(&configureURL, "url", "", "endpoint URL (skips the prompts)")
	configureAddCmd.Flags().BoolVar(&configureDefault, "default", false, "make this the default profile")
	configureAddCmd.Flags().BoolVar(&configureSkipCheck, "skip-check", false, "do not call the server's health check")
}

// loadProfiles reads the profile file, treating a missing file as empty.
func loadProfiles() (*clientcli.ConfigFile, error) {
	cf, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &clientcli.ConfigFile{}, nil
	case err != nil:
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cf, nil
}

func saveProfiles(cf *clientcli.ConfigFile) error {
	if err := cf.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func defaultProfileName(cf *clientcli.ConfigFile) string {
	if p, err := cf.GetDefaultProfile(); err == nil {
		return p.Name
	}
	return ""
}

// confirm asks a yes/no question. Any answer other than yes, including an
// interrupt, counts as no.
func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

func runConfigureList(cmd *cobra.Command, _ []string) error {
	cf, err := loadProfiles()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cf.Profiles) == 0 && !jsonOutput {
		fmt.Fprintln(out, "No profiles configured.")
		fmt.Fprintln(out, "Run 'filecrud-cli configure add <name>' to create one.")
		return nil
	}
	return getFormatter().FormatProfileList(out, cf.Profiles, defaultProfileName(cf))
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()

	cf, err := loadProfiles()
	if err != nil {
		return err
	}
	existing, _ := cf.GetProfile(name)
	interactive := configureURL == ""

	profile := clientcli.Profile{Name: name, Endpoint: configureURL, Default: configureDefault || len(cf.Profiles) == 0}
	if interactive {
		profile, err = promptProfile(cf, existing, name)
		if errors.Is(err, errCancelled) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
	} else if err := validateEndpoint(profile.Endpoint); err != nil {
		return err
	}
	profile.Endpoint = strings.TrimSuffix(profile.Endpoint, "/")

	if !configureSkipCheck {
		if err := checkServer(cmd.Context(), out, profile.Endpoint, interactive); err != nil {
			if errors.Is(err, errCancelled) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			return err
		}
	}

	if existing != nil {
		profile.Default = profile.Default || existing.Default
		err = cf.UpdateProfile(profile)
	} else {
		err = cf.AddProfile(profile)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := saveProfiles(cf); err != nil {
		return err
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	fmt.Fprintf(out, "Profile '%s' %s.\n", name, verb)
	if defaultProfileName(cf) == name {
		fmt.Fprintln(out, "It is the default profile.")
	}
	return nil
}

// promptProfile collects the endpoint and default choice interactively.
// The first profile in an empty file always becomes the default.
func promptProfile(cf *clientcli.ConfigFile, existing *clientcli.Profile, name string) (clientcli.Profile, error) {
	p := clientcli.Profile{Name: name}

	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
		return p, errCancelled
	}

	suggested := clientcli.DefaultEndpoint
	if existing != nil {
		suggested = existing.Endpoint
	}
	endpointURL, err := (&promptui.Prompt{
		Label:    "Endpoint URL",
		Default:  suggested,
		Validate: validateEndpoint,
	}).Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return p, errCancelled
	}
	if err != nil {
		return p, err
	}
	p.Endpoint = endpointURL

	onlyProfile := len(cf.Profiles) == 0 || (existing != nil && len(cf.Profiles) == 1)
	p.Default = configureDefault || onlyProfile || confirm("Set as default profile")
	return p, nil
}

// checkServer reports whether the endpoint answers its health check. An
// unreachable server fails a scripted add; interactively the user may save
// the profile anyway.
func checkServer(ctx context.Context, out io.Writer, endpointURL string, interactive bool) error {
	fmt.Fprint(out, "Testing connection... ")

	err := pingServer(ctx, endpointURL)
	if err == nil {
		fmt.Fprintln(out, "OK")
		return nil
	}

	fmt.Fprintln(out, "FAILED")
	if !interactive {
		return fmt.Errorf("server at %s is not reachable: %w", endpointURL, err)
	}

	fmt.Fprintf(out, "Warning: could not reach server: %v\n", err)
	if !confirm("Save profile anyway") {
		return errCancelled
	}
	return nil
}

func pingServer(ctx context.Context, endpointURL string) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	client, err := clientcli.New(&clientcli.Config{Endpoint: endpointURL}, clientcli.WithTimeout(healthCheckTimeout))
	if err != nil {
		return err
	}
	return client.Health(ctx)
}

func runConfigureRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	cf, err := loadProfiles()
	if err != nil {
		return err
	}
	if _, err := cf.GetProfile(name); err != nil {
		return err
	}

	if !configureYes && !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	if err := cf.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}
	if err := saveProfiles(cf); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	cf, err := loadProfiles()
	if err != nil {
		return err
	}
	if err := cf.SetDefault(args[0]); err != nil {
		return err
	}
	if err := saveProfiles(cf); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to '%s'.\n", args[0])
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cf, err := loadProfiles()
	if err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cf.GetProfile(name)
	if err != nil {
		return err
	}
	return getFormatter().FormatProfileShow(cmd.OutOrStdout(), *p, p.Name == defaultProfileName(cf))
}

func validateEndpoint(input string) error {
	if input == "" {
		return errors.New("endpoint URL is required")
	}
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}
