package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/contest-guide/internal/advisor"
	"github.com/spigell/contest-guide/internal/ai/gemini"
	"github.com/spigell/contest-guide/internal/config"
	"github.com/spigell/contest-guide/internal/logger"
	"github.com/spigell/contest-guide/internal/mock"
)

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   config.App,
		Short: "contest-guide analyzes contest announcements against a user profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := config.SetDefaults(viper.GetViper()); err != nil {
		log.Fatalf("setting config defaults: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is contest-guide.yaml in current directory, optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "a dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if _, err := config.LoadDotEnv(envFile); err != nil {
		log.Fatal(err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(config.App)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: everything can come from the environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

func newLogger() (*zap.Logger, error) {
	l, err := logger.New(logger.Options{
		JSON:    viper.GetBool("json"),
		Debug:   viper.GetBool("debug"),
		Service: config.Service,
		Version: version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return l, nil
}

// newService builds the advisor. The model client is created only when the
// configured credential looks usable; otherwise every request is served by
// the mock synthesizer.
func newService(ctx context.Context, cfg *config.Config, l *zap.Logger) (*advisor.Service, error) {
	opts := advisor.Options{
		Mock:        mock.New(nil, nil),
		Mode:        cfg.AI.Mode(),
		Model:       cfg.AI.Model,
		VisionModel: cfg.AI.VisionModel,
		Logger:      l.With(zap.String("component", "advisor")),
	}

	if opts.Mode != config.ModeReal {
		l.Warn("no usable model credential configured, running in mock mode",
			zap.String("hint", "set GEMINI_API_KEY or GEMINI_API_KEY_FILE"),
		)
		return advisor.New(opts), nil
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		VisionModel: cfg.AI.VisionModel,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.RequestTimeout(),
		MaxRetries:  cfg.AI.MaxRetries,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("creating gemini generator: %w", err)
	}

	analyzer := gemini.NewAnalyzer(generator, l, cfg.AI.MaxLogLength)
	opts.Analyzer = analyzer
	opts.Extractor = analyzer

	return advisor.New(opts), nil
}
