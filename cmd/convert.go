package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/confmorph/confmorph/pkg/config"
	"github.com/confmorph/confmorph/pkg/llm"
	"github.com/confmorph/confmorph/pkg/logging"
	"github.com/confmorph/confmorph/pkg/providers"
	"github.com/confmorph/confmorph/pkg/providers/catalog"
	"github.com/confmorph/confmorph/pkg/reconcile"
	"github.com/confmorph/confmorph/pkg/transform"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	convertInputContent string
	convertTo           string
	convertOutput       string
	convertAction       string
	convertProvider     string
	convertModel        string
	convertAPIKey       string
	convertBaseURL      string
	convertEncodeTOON   bool
	convertCache        bool
	convertInteractive  bool
	convertVerbose      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [input-file]",
	Short: "Convert a configuration document to a target schema",
	Long: `Reads a configuration document from a file or from --input-content,
converts it to the target schema named by --to, and reconciles the result
with the destination file according to --output-action.

The destination defaults to the target schema's conventional path, e.g.
.vscode/mcp.json for vscode. Pass --output - to print the result without
writing a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertInputContent, "input-content", "", "raw configuration content instead of an input file")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target schema: "+strings.Join(transform.SchemaNames(), ", "))
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "destination path (default: schema convention, '-' for stdout only)")
	convertCmd.Flags().StringVar(&convertAction, "output-action", "update", "policy when the destination exists: overwrite, skip, replace, update")
	convertCmd.Flags().StringVar(&convertProvider, "llm-provider", "", "model provider name, or 'auto' for cost-ranked selection")
	convertCmd.Flags().StringVar(&convertModel, "llm-model", "", "model name, or an integer index into the provider's model list")
	convertCmd.Flags().StringVar(&convertAPIKey, "llm-api-key", "", "API key override for the provider")
	convertCmd.Flags().StringVar(&convertBaseURL, "llm-base-url", "", "endpoint override for the provider")
	convertCmd.Flags().BoolVar(&convertEncodeTOON, "encode-toon", true, "re-encode structured input as TOON before prompting")
	convertCmd.Flags().BoolVar(&convertCache, "llm-cache", false, "cache model responses for identical requests")
	convertCmd.Flags().BoolVarP(&convertInteractive, "interactive", "i", false, "confirm the write and prompt for a missing API key")
	convertCmd.Flags().BoolVarP(&convertVerbose, "verbose", "v", false, "show a diff of the destination change")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()
	settings := config.Load()

	content, err := readConvertInput(args)
	if err != nil {
		return err
	}

	target := convertTo
	if target == "" && convertInteractive {
		target, err = promptTargetSchema()
		if err != nil {
			return err
		}
	}
	if target == "" {
		return fmt.Errorf("--to is required: target schema, one of %s", strings.Join(transform.SchemaNames(), ", "))
	}
	schema, ok := transform.LookupSchema(target)
	if !ok {
		return fmt.Errorf("unknown target schema %q (known: %s)", target, strings.Join(transform.SchemaNames(), ", "))
	}

	action, err := reconcile.ParseAction(convertAction)
	if err != nil {
		return err
	}

	outputPath := convertOutput
	if outputPath == "" {
		outputPath = schema.DefaultOutput
	} else if outputPath == "-" {
		outputPath = ""
	}

	// Skip is resolved before any generation happens so no provider call
	// is spent on a result that would be discarded.
	if action == reconcile.ActionSkip && outputPath != "" {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			fmt.Printf("Destination %s exists; skipping conversion.\n", outputPath)
			logger.Logf("convert: skipped, destination %s exists", outputPath)
			return nil
		}
	}

	providerName := firstNonEmpty(convertProvider, settings.Provider)
	modelName := firstNonEmpty(convertModel, settings.Model)
	creds := providers.Credentials{
		APIKey:  firstNonEmpty(convertAPIKey, settings.APIKey),
		BaseURL: firstNonEmpty(convertBaseURL, settings.BaseURL),
	}

	if convertInteractive && creds.APIKey == "" && providerName != providers.AutoProvider {
		if key, promptErr := promptAPIKey(providerName); promptErr == nil && key != "" {
			creds.APIKey = key
		}
	}

	registry, err := catalog.NewDefaultRegistry()
	if err != nil {
		return err
	}
	adapter, desc, err := registry.Create(ctx, providerName, creds)
	if err != nil {
		return err
	}
	logger.Logf("convert: using provider %s", desc.Name)

	clientOpts := []llm.Option{}
	if convertCache || settings.CacheEnabled {
		cacheDir := firstNonEmpty(settings.CacheDir, llm.DefaultCacheDir())
		cache, cacheErr := llm.NewResponseCache(cacheDir)
		if cacheErr != nil {
			return fmt.Errorf("opening response cache: %w", cacheErr)
		}
		clientOpts = append(clientOpts, llm.WithCache(cache))
	}
	client := llm.New(adapter, desc, clientOpts...)

	result, err := transform.New(client).Convert(ctx, content, schema, transform.Options{
		EncodeTOON: convertEncodeTOON,
		Model:      modelName,
	})
	if err != nil {
		return err
	}
	if convertVerbose {
		fmt.Printf("Input format: %s", result.InputFormat)
		if result.SentAsTOON {
			fmt.Print(" (sent as TOON)")
		}
		fmt.Println()
	}

	if convertInteractive && outputPath != "" {
		ok, promptErr := confirmWrite(outputPath)
		if promptErr != nil {
			return promptErr
		}
		if !ok {
			fmt.Println(result.Content)
			return nil
		}
	}

	rec, err := reconcile.New().Reconcile([]byte(result.Content), outputPath, action)
	if err != nil {
		return err
	}

	switch {
	case rec.Skipped:
		fmt.Printf("Destination %s exists; conversion result discarded.\n", outputPath)
	case rec.Written:
		fmt.Printf("Wrote %s (%s)\n", outputPath, schema.Name)
		if convertVerbose {
			printDiff(string(rec.Previous), string(rec.Bytes))
		}
	default:
		fmt.Println(string(rec.Bytes))
	}
	logger.Logf("convert: schema=%s output=%s action=%s written=%t", schema.Name, outputPath, action, rec.Written)
	return nil
}

func readConvertInput(args []string) (string, error) {
	if convertInputContent != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("pass an input file or --input-content, not both")
		}
		return convertInputContent, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("an input file or --input-content is required")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func promptTargetSchema() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("--to is required when stdin is not a terminal")
	}
	fmt.Printf("Target schema (%s): ", strings.Join(transform.SchemaNames(), ", "))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptAPIKey(provider string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	fmt.Printf("API key for %s: ", provider)
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(key)), nil
}

func confirmWrite(path string) (bool, error) {
	fmt.Printf("Write result to %s? [y/N]: ", path)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func printDiff(before, after string) {
	if before == after {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, true)
	dmp.DiffCleanupSemantic(diffs)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			fmt.Printf("+ %s\n", strings.TrimRight(d.Text, "\n"))
		case diffmatchpatch.DiffDelete:
			fmt.Printf("- %s\n", strings.TrimRight(d.Text, "\n"))
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
