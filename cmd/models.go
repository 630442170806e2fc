package cmd

import (
	"fmt"

	"github.com/confmorph/confmorph/pkg/config"
	"github.com/confmorph/confmorph/pkg/providers"
	"github.com/confmorph/confmorph/pkg/providers/catalog"
	"github.com/spf13/cobra"
)

var modelsAPIKey string

var modelsCmd = &cobra.Command{
	Use:   "models <provider>",
	Short: "List the models a provider offers",
	Long: `Queries the named provider for its model list. Models are printed
with their index, which can be passed to convert --llm-model, including
negative indices counting from the end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		settings := config.Load()

		registry, err := catalog.NewDefaultRegistry()
		if err != nil {
			return err
		}
		creds := providers.Credentials{
			APIKey:  firstNonEmpty(modelsAPIKey, settings.APIKey),
			BaseURL: settings.BaseURL,
		}
		adapter, desc, err := registry.Create(ctx, args[0], creds)
		if err != nil {
			return err
		}

		lister, ok := adapter.(providers.ModelLister)
		if !ok {
			return fmt.Errorf("provider %q does not expose a model list", desc.Name)
		}
		models, err := lister.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("listing models for %s: %w", desc.Name, err)
		}
		for i, m := range models {
			marker := " "
			if m == desc.DefaultModel {
				marker = "*"
			}
			fmt.Printf("%s %3d  %s\n", marker, i, m)
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().StringVar(&modelsAPIKey, "llm-api-key", "", "API key override for the provider")
	rootCmd.AddCommand(modelsCmd)
}
