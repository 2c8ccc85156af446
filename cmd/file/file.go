// Package file implements the single-file analysis command.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sonory/soundscape-go/internal/analyzer"
	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/myaudio"
	"github.com/sonory/soundscape-go/internal/soundscape"
	"github.com/sonory/soundscape-go/internal/yamnet"
)

// Command creates a new file command for analyzing a single audio file.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [input.wav]",
		Short: "Analyze an audio file",
		Long:  `Analyze a single audio file and print the classification result as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFileAnalysis(settings, args[0])
		},
	}

	return cmd
}

func runFileAnalysis(settings *conf.Settings, path string) error {
	model := yamnet.New(settings)
	if err := model.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize model: %w", err)
	}

	processor := myaudio.NewProcessor(settings)
	defer processor.Close()

	taxonomy := soundscape.DefaultTaxonomy(settings.Soundscape.MinScore)
	anlz := analyzer.New(model, processor, taxonomy, settings.Model.TopK)

	result, err := anlz.AnalyzeFile(context.Background(), path, settings.Model.TopK)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
