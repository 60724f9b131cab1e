package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/remon-cli/remon/internal/config"
	"github.com/remon-cli/remon/internal/errors"
	"github.com/remon-cli/remon/internal/ui"
	"github.com/remon-cli/remon/pkg/sshutil"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Host           string // Pre-specified SSH host/alias
	Interval       string // Pre-specified polling interval
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// initProbeTimeout bounds the connection test during setup.
const initProbeTimeout = 10 * time.Second

// initAnswers collects the wizard's raw responses before they are
// turned into a config.
type initAnswers struct {
	Host     string
	User     string
	Port     string
	Interval string
}

// Init creates a new .remon.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		var overwrite bool

		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

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

	answers := initAnswers{
		Host:     opts.Host,
		Interval: opts.Interval,
	}
	if answers.Interval == "" {
		answers.Interval = config.DefaultConfig().Poll.Interval.String()
	}

	if opts.NonInteractive {
		if answers.Host == "" {
			return errors.New(errors.ErrConfig,
				"SSH host is required in non-interactive mode",
				"Provide --host flag or run interactively")
		}
	} else {
		if err := runInitForm(&answers); err != nil {
			return err
		}
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}

	// Test connection before saving
	fmt.Println()
	spinner := ui.NewSpinner("Testing connection to " + answers.Host)
	spinner.Start()

	if err := testConnection(cfg.Server); err != nil {
		spinner.Fail()

		// Connection failed, but still offer to save the config
		var saveAnyway bool
		if !opts.NonInteractive {
			fmt.Printf("\n%s Connection to '%s' failed: %v\n\n", ui.SymbolFail, answers.Host, err)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Save config anyway? (You can fix the connection later)").
						Value(&saveAnyway),
				),
			)

			if formErr := form.Run(); formErr != nil {
				return errors.WrapWithCode(formErr, errors.ErrConfig,
					"Failed to get user input",
					"Re-run 'remon init' when your terminal supports prompts")
			}
		}

		if !saveAnyway {
			return errors.WrapWithCode(err, errors.ErrSSH,
				fmt.Sprintf("Couldn't connect to '%s'", answers.Host),
				"Check the hostname and your SSH keys, then re-run 'remon init'.")
		}
	} else {
		spinner.Success()
	}

	if err := config.Write(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("\n%s Wrote %s\n", ui.SymbolSuccess, configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  remon status   one-shot snapshot")
	fmt.Println("  remon watch    live dashboard")
	return nil
}

// runInitForm prompts for the connection settings.
func runInitForm(answers *initAnswers) error {
	hostDescription := "Enter hostname, user@host, or SSH config alias"
	if known := sshutil.KnownHosts(); len(known) > 0 {
		aliases := make([]string, 0, 3)
		for _, entry := range known {
			aliases = append(aliases, entry.Alias)
			if len(aliases) == 3 {
				break
			}
		}
		hostDescription += " (from ~/.ssh/config: " + strings.Join(aliases, ", ") + ")"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SSH host").
				Description(hostDescription).
				Placeholder("myserver or user@192.168.1.100").
				Value(&answers.Host).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("SSH host is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SSH user (optional)").
				Description("Leave empty to use the host's default").
				Placeholder("admin").
				Value(&answers.User),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SSH port (optional)").
				Description("Leave empty for 22").
				Placeholder("22").
				Value(&answers.Port).
				Validate(validatePortAnswer),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Polling interval").
				Description("How often 'remon watch' refreshes").
				Placeholder("2s").
				Value(&answers.Interval).
				Validate(validateIntervalAnswer),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or pass --host to skip prompts")
	}
	return nil
}

// buildInitConfig turns wizard answers into a validated config.
func buildInitConfig(answers initAnswers) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Server.Host = strings.TrimSpace(answers.Host)
	cfg.Server.User = strings.TrimSpace(answers.User)

	if port := strings.TrimSpace(answers.Port); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"'"+port+"' isn't a valid port number",
				"Use a number between 1 and 65535.")
		}
		cfg.Server.Port = n
	}

	if interval := strings.TrimSpace(answers.Interval); interval != "" {
		d, err := parseWatchInterval(interval)
		if err != nil {
			return nil, err
		}
		cfg.Poll.Interval = d
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// testConnection dials the server and runs a probe.
func testConnection(server config.ServerConfig) error {
	client, err := sshutil.Dial(probeTarget(server), initProbeTimeout)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Probe()
}

// probeTarget composes a user@host:port dial string from server settings.
func probeTarget(server config.ServerConfig) string {
	target := server.Host
	if server.User != "" && !strings.Contains(target, "@") {
		target = server.User + "@" + target
	}
	if server.Port != 0 && server.Port != 22 && !strings.Contains(server.Host, ":") {
		target = target + ":" + strconv.Itoa(server.Port)
	}
	return target
}

// validatePortAnswer accepts an empty answer or a port in range.
func validatePortAnswer(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

// validateIntervalAnswer accepts an empty answer or a parseable duration.
func validateIntervalAnswer(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := parseWatchInterval(s); err != nil {
		return fmt.Errorf("use a duration like 2s or 1m (500ms minimum)")
	}
	return nil
}
