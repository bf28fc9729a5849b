package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/grokscout/grokscout/internal/config"
	"github.com/grokscout/grokscout/internal/discord"
	"github.com/grokscout/grokscout/internal/format"
	"github.com/grokscout/grokscout/internal/install"
	"github.com/grokscout/grokscout/internal/mcp"
	"github.com/grokscout/grokscout/internal/search"
	"github.com/grokscout/grokscout/internal/skills"
	"github.com/grokscout/grokscout/internal/telegram"
)

func main() {
	root := &cobra.Command{
		Use:   "grokscout",
		Short: "Web search via the Grok API, exposed over MCP, Telegram and Discord",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Double-clicked or run bare in a terminal: don't hang waiting
			// for an MCP host on stdin.
			if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				return cmd.Help()
			}
			return runServe()
		},
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newSearchCmd(), newSkillCmd(true), newSkillCmd(false), newInstallCmd(), newUninstallCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio (plus Telegram/Discord bots when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	store, err := config.NewStore()
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	settings, err := store.Effective()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	// Bring skill install state in line with settings; failures here must
	// not block the server
	if mgr, err := skills.NewManager(); err == nil {
		if err := mgr.Sync(settings.EnableSkill); err != nil {
			log.Printf("Warning: skill sync failed: %v", err)
		}
	} else {
		log.Printf("Warning: skill manager unavailable: %v", err)
	}

	runner := search.NewRunner(store)

	if settings.TelegramToken != "" {
		tgBot, err := telegram.New(settings.TelegramToken, settings.AllowedUserIDs, runner)
		if err != nil {
			log.Printf("Warning: failed to create Telegram bot: %v. Telegram integration disabled.", err)
		} else {
			go tgBot.Start(ctx)
		}
	}

	if settings.DiscordToken != "" {
		discordBot, err := discord.New(settings.DiscordToken, settings.DiscordGuildID, runner)
		if err != nil {
			log.Printf("Warning: failed to create Discord bot: %v. Discord integration disabled.", err)
		} else if err := discordBot.Start(); err != nil {
			log.Printf("Warning: failed to start Discord bot: %v", err)
		} else {
			defer discordBot.Stop()
		}
	}

	return mcp.NewServer(store, runner).Run(ctx)
}

func newSearchCmd() *cobra.Command {
	var query string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a single search and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query is required")
			}

			store, err := config.NewStore()
			if err != nil {
				return fmt.Errorf("open settings: %w", err)
			}
			runner := search.NewRunner(store)

			res := runner.Run(cmd.Context(), query)

			if asJSON {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				settings := runner.Settings()
				fmt.Println(format.Display(res, format.Options{
					ShowSources: settings.ShowSources,
					MaxSources:  settings.MaxSources,
				}))
			}

			if !res.OK {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newSkillCmd(enable bool) *cobra.Command {
	use, short := "install-skill", "Install the grok-search skill into the host skills directory"
	if !enable {
		use, short = "uninstall-skill", "Remove the grok-search skill, moving it back to the persistent directory"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewStore()
			if err != nil {
				return fmt.Errorf("open settings: %w", err)
			}
			mgr, err := skills.NewManager()
			if err != nil {
				return err
			}
			if err := mgr.Sync(enable); err != nil {
				return err
			}
			if err := store.Update(func(s *config.Settings) {
				s.EnableSkill = enable
			}); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			if enable {
				fmt.Printf("Skill installed to %s\n", mgr.InstalledDir())
			} else {
				fmt.Println("Skill uninstalled")
			}
			return nil
		},
	}
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Register grokscout as an MCP server in detected AI tools (Cursor, Claude Desktop, ...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("get executable path: %w", err)
			}
			if err := install.Install(executable); err != nil {
				return err
			}
			fmt.Println("\ngrokscout is now configured. Restart your IDE or AI CLI to apply changes.")
			return nil
		},
	}
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove grokscout from detected MCP client configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := install.Uninstall(); err != nil {
				return err
			}
			fmt.Println("grokscout removed from MCP client configurations.")
			return nil
		},
	}
}
