package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/logger"
	"github.com/spigell/contest-guide/internal/server"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single contest and print the result as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := analyze(cmd); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("text", "t", "", "contest description; asked interactively when neither text nor image is given")
	analyzeCmd.Flags().StringP("text-file", "f", "", "read the contest description from a file")
	analyzeCmd.Flags().StringP("image", "i", "", "path to a contest poster (jpeg, png, webp or gif)")
	analyzeCmd.Flags().StringP("profile", "u", "{}", "user profile as JSON")
	analyzeCmd.Flags().StringP("options", "o", "{}", "analysis options as JSON, e.g. {\"generateChecklist\": true}")
}

func analyze(cmd *cobra.Command) error {
	ctx := context.Background()

	zlog, err := newLogger()
	if err != nil {
		return err
	}
	defer zlog.Sync()

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	profileFlag, _ := cmd.Flags().GetString("profile")
	profile, err := server.ParseProfile(profileFlag)
	if err != nil {
		return err
	}
	optionsFlag, _ := cmd.Flags().GetString("options")

	text, err := contestText(cmd)
	if err != nil {
		return err
	}

	var image *ai.Image
	if path, _ := cmd.Flags().GetString("image"); path != "" {
		if image, err = loadImage(path); err != nil {
			return err
		}
	}

	if text == "" && image == nil {
		if text, err = askContestText(); err != nil {
			return err
		}
	}

	service, err := newService(ctx, config, zlog)
	if err != nil {
		return err
	}

	out := service.Analyze(ctx, ai.AnalysisRequest{
		Profile:     profile,
		ContestText: text,
		Image:       image,
		Options:     server.ParseOptions(optionsFlag),
	})

	fields := append(logger.OutcomeFields("analyze", string(out.Mode), out.Model), zap.Duration("duration", out.Duration))
	zlog.Info("analysis finished", fields...)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Data)
}

func contestText(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	path, _ := cmd.Flags().GetString("text-file")
	if path == "" {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading contest text: %w", err)
	}
	return string(data), nil
}

func loadImage(path string) (*ai.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if err := server.CheckImage(mimeType, int64(len(data))); err != nil {
		return nil, err
	}
	return &ai.Image{MIMEType: mimeType, Data: data}, nil
}

func askContestText() (string, error) {
	prompt := promptui.Prompt{
		Label: "Contest description",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("please provide contest text")
			}
			return nil
		},
	}

	text, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("reading contest text: %w", err)
	}
	return text, nil
}
