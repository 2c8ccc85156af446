// Package cmd wires the CLI commands together.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sonory/soundscape-go/cmd/file"
	"github.com/sonory/soundscape-go/cmd/serve"
	"github.com/sonory/soundscape-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "soundscape-go",
		Short: "Soundscape-Go CLI",
		Long:  `Acoustic scene analysis service: classifies environmental audio into sound categories and environment types.`,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		file.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Model.Path, "model", viper.GetString("model.path"), "Path to the TFLite model file")
	rootCmd.PersistentFlags().StringVar(&settings.Model.LabelsPath, "labels", viper.GetString("model.labelspath"), "Path to the class map file")
	rootCmd.PersistentFlags().IntVar(&settings.Model.TopK, "top-k", viper.GetInt("model.topk"), "Number of top class scores kept per analysis")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
