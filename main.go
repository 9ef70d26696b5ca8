package main

import (
	"fmt"
	"os"

	"grimoire/internal/config"
	"grimoire/internal/logging"
	"grimoire/internal/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version  = "0.1.0"
	cfgFile  string
	endpoint string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "grimoire",
		Short: "Terminal chat and document Q&A over local Ollama models",
		Long: `Grimoire is a terminal frontend for locally served Ollama models.
It offers a plain chat mode and a RAG mode that indexes a directory of
PDF, Markdown and text files so queries are answered from your own
documents.`,
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./grimoire.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Ollama endpoint (default is http://127.0.0.1:11434)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("grimoire version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if appDir, derr := config.AppDir(); derr == nil {
		if lerr := logging.EnableFileLogging(appDir, cfg.LogLevel); lerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", lerr)
		}
	}
	defer logging.Close()

	logging.Info("starting", "version", version, "endpoint", cfg.Endpoint)

	p := ui.NewProgram(cfg)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*ui.Model); ok {
		if m.DB != nil {
			_ = m.DB.Close()
		}
	}
	return nil
}
