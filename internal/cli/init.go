package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/rileyhilliard/storelens/internal/ui"
	"gopkg.in/yaml.v3"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	BaseURL        string // Analytics API base URL
	Store          string // Default store id
	Dir            string // Directory to write into, default "."
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// getInitDefaults reads init defaults from the environment.
func getInitDefaults() InitOptions {
	nonInteractive := os.Getenv("STORELENS_NON_INTERACTIVE")
	return InitOptions{
		BaseURL:        os.Getenv("STORELENS_API_BASE_URL"),
		Store:          os.Getenv("STORELENS_STORE_DEFAULT"),
		NonInteractive: nonInteractive == "true" || nonInteractive == "1" || os.Getenv("CI") != "",
	}
}

// mergeInitOptions fills empty flags from the environment. Flags win.
func mergeInitOptions(opts InitOptions) InitOptions {
	env := getInitDefaults()
	if opts.BaseURL == "" {
		opts.BaseURL = env.BaseURL
	}
	if opts.Store == "" {
		opts.Store = env.Store
	}
	if env.NonInteractive {
		opts.NonInteractive = true
	}
	return opts
}

// Init creates a new .storelens.yaml configuration file.
func Init(opts InitOptions) error {
	opts = mergeInitOptions(opts)

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	baseURL := opts.BaseURL
	store := opts.Store
	var known string

	if !opts.NonInteractive {
		if baseURL == "" {
			baseURL = cfg.API.BaseURL
		}
		if store == "" {
			store = cfg.Store.Default
		}

		fmt.Print(ui.RenderHeader(ui.HeaderInfo{Version: formatVersion(version), Tagline: "Store analytics setup", API: baseURL}))
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Analytics API base URL").
					Description("Every metric endpoint is resolved relative to this").
					Placeholder(cfg.API.BaseURL).
					Value(&baseURL).
					Validate(validateBaseURL),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Default store").
					Description("The store the dashboard opens on").
					Placeholder("s1").
					Value(&store).
					Validate(validateStoreID),
				huh.NewInput().
					Title("Other stores (optional)").
					Description("Comma-separated ids to switch between with tab").
					Placeholder("s2,s3").
					Value(&known),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}

		probeAPI(baseURL, store, cfg.API.Timeout)
	}

	if baseURL != "" {
		if err := validateBaseURL(baseURL); err != nil {
			return errors.New(errors.ErrConfig, err.Error(), "Pass a full URL like http://localhost:8000/api")
		}
		cfg.API.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if store != "" {
		if err := validateStoreID(store); err != nil {
			return errors.New(errors.ErrConfig, err.Error(), "Store ids may contain letters, digits, '-' and '_'")
		}
		cfg.Store.Default = store
	}
	for _, s := range parseStores(known, "") {
		if s != cfg.Store.Default {
			cfg.Store.Known = append(cfg.Store.Known, s)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# storelens configuration
# Run 'storelens dashboard' to open the store dashboard
# Environment overrides use the STORELENS_ prefix, e.g. STORELENS_API_TOKEN

`
	if err := os.WriteFile(configPath, []byte(header+string(data)), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  storelens doctor     - Check the API is reachable")
	fmt.Println("  storelens dashboard  - Open the dashboard")
	fmt.Println("  storelens chat       - Talk to the shopping assistant")
	return nil
}

// probeAPI fetches one source so the user learns early if the URL is wrong.
// A failure only warns: the backend may not be running yet.
func probeAPI(baseURL, store string, timeout time.Duration) {
	src, _ := source.DefaultRegistry().Get(string(source.Insights))

	fmt.Println()
	spinner := ui.NewSpinner(os.Stdout, "Testing connection to "+baseURL)
	spinner.Start()

	r := fetch.New(baseURL, fetch.WithTimeout(timeout)).FetchOne(context.Background(), 0, store, src)
	if r.Status == fetch.StatusErr {
		spinner.Finish(ui.SpinnerFailed, "")
		ui.PrintWarning("Couldn't reach the analytics API. Saving anyway; run 'storelens doctor' once it's up.")
		return
	}
	spinner.Finish(ui.SpinnerDone, "")
	fmt.Println()
}

func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", s)
	}
	return nil
}

func validateStoreID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("store id is required")
	}
	if strings.ContainsAny(s, " \t\n,/") {
		return fmt.Errorf("store id %q cannot contain whitespace, commas or slashes", s)
	}
	return nil
}

// initCommand is the implementation called by the cobra command.
func initCommand(opts InitOptions) error {
	return Init(opts)
}
