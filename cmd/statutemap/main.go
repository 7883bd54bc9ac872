package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/coolbeans/statutemap/pkg/analysis"
	"github.com/coolbeans/statutemap/pkg/citation"
	"github.com/coolbeans/statutemap/pkg/loader"
	"github.com/spf13/cobra"
	"gopkg.in/fsnotify.v1"
)

var version = "0.1.0"

const defaultReportFilename = "statute_analysis_report.txt"

func main() {
	rootCmd := &cobra.Command{
		Use:   "statutemap",
		Short: "Statute citation extractor and cross-reference mapper",
		Long: `Statutemap analyzes legal documents locally and catalogs every
statute citation they contain:

  - U.S. Code (USC) citations
  - Code of Federal Regulations (CFR)
  - State code references
  - Public law references
  - Bare section references

It produces a report with total reference counts, unique citations by
type, and a cross-reference map showing every location each citation
occurs with surrounding context. No network access is used.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive()
		},
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(interactiveCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(formatsCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildAnalyzer assembles the registry and analyzer from shared flags.
func buildAnalyzer(cmd *cobra.Command) (*analysis.Analyzer, error) {
	rulesDir, _ := cmd.Flags().GetString("rules")
	contextRadius, _ := cmd.Flags().GetInt("context")
	suppress, _ := cmd.Flags().GetBool("suppress-contained-sections")

	registry := citation.DefaultRegistry()
	if rulesDir != "" {
		if err := registry.LoadDirectory(rulesDir); err != nil {
			return nil, fmt.Errorf("loading rules from %s: %w", rulesDir, err)
		}
	}

	opts := []analysis.AnalyzerOption{analysis.WithContextRadius(contextRadius)}
	if suppress {
		opts = append(opts, analysis.WithContainedSectionSuppression())
	}
	return analysis.NewAnalyzer(registry, opts...), nil
}

// addAnalysisFlags registers the flags shared by analyze and watch.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "Path to the document to analyze (.txt, .pdf, .docx, .doc)")
	cmd.Flags().String("rules", "", "Directory of additional YAML rule files")
	cmd.Flags().Int("context", analysis.DefaultContextRadius, "Context window radius in characters")
	cmd.Flags().Bool("suppress-contained-sections", false,
		"Drop bare section matches contained in citations of other types")
}

// renderReport formats a report according to the requested output format.
func renderReport(report *analysis.AnalysisReport, format string) (string, error) {
	switch format {
	case "text":
		return report.String(), nil
	case "table":
		return report.FormatTable(), nil
	case "json":
		data, err := report.ToJSON()
		if err != nil {
			return "", fmt.Errorf("serializing report: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, table, or json)", format)
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze statute citations in a document",
		Long: `Analyze a document and print the statute cross-reference report.

Example:
  statutemap analyze --source brief.txt
  statutemap analyze --source brief.pdf --format json --output refs.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")

			if source == "" {
				return fmt.Errorf("--source flag is required")
			}

			analyzer, err := buildAnalyzer(cmd)
			if err != nil {
				return err
			}

			text, err := loader.New().Load(source)
			if err != nil {
				return err
			}

			report, err := analyzer.AnalyzeDocument(text, source)
			if err != nil {
				return err
			}

			rendered, err := renderReport(report, format)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(rendered)
				return nil
			}
			if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
				return fmt.Errorf("writing report to %s: %w", output, err)
			}
			fmt.Printf("Report saved to: %s\n", output)
			return nil
		},
	}

	addAnalysisFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, table, or json")
	return cmd
}

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Run the interactive analysis prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive()
		},
	}
}

// runInteractive prompts for a document path, prints the report, and
// offers to save it. Loader failures are reported and the user may retry
// with a new path; a failed save does not discard the in-memory report.
func runInteractive() error {
	docLoader := loader.New()
	analyzer := analysis.NewAnalyzer(citation.DefaultRegistry())
	reader := bufio.NewReader(os.Stdin)

	banner := strings.Repeat("=", 70)
	fmt.Println(banner)
	fmt.Println("STATUTE CROSS-REFERENCE FINDER")
	fmt.Println(banner)

	var report *analysis.AnalysisReport
	for {
		fmt.Print("\nEnter the path to your document (.txt, .pdf, .docx, or .doc): ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading input: %w", err)
		}

		path := strings.Trim(strings.TrimSpace(line), `"'`)
		if path == "" {
			fmt.Println("No file path provided.")
			continue
		}

		text, err := docLoader.Load(path)
		if err != nil {
			reportLoadError(err)
			continue
		}

		report, err = analyzer.AnalyzeDocument(text, path)
		if err != nil {
			return err
		}
		break
	}

	fmt.Println()
	fmt.Println(report.String())

	fmt.Print("\nWould you like to save this report to a file? (yes/no): ")
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "yes" && answer != "y" {
		fmt.Println("\nAnalysis complete!")
		return nil
	}

	fmt.Printf("Enter output filename (default: %s): ", defaultReportFilename)
	filename, _ := reader.ReadString('\n')
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = defaultReportFilename
	}

	if err := os.WriteFile(filename, []byte(report.String()), 0644); err != nil {
		fmt.Printf("\nError saving report: %v\n", err)
		fmt.Println("The report above remains available.")
		return nil
	}

	fmt.Printf("\nReport saved to: %s\n", filename)
	fmt.Println("\nAnalysis complete!")
	return nil
}

// reportLoadError prints a loader failure in user terms.
func reportLoadError(err error) {
	var notFound *loader.FileNotFoundError
	var unsupported *loader.UnsupportedFormatError
	var missing *loader.MissingDependencyError
	var decode *loader.DecodeError

	switch {
	case errors.As(err, &notFound):
		fmt.Printf("Error: file not found - %q\n", notFound.Path)
		fmt.Println("Please check the file path and try again.")
	case errors.As(err, &unsupported):
		fmt.Printf("Error: %v\n", unsupported)
	case errors.As(err, &missing):
		fmt.Printf("Error: %v\n", missing)
	case errors.As(err, &decode):
		fmt.Printf("Error: %v\n", decode)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect or export the citation rule table",
		Long: `List the active citation rules, optionally extended from a rules
directory, or export the table as YAML for customization.

Example:
  statutemap rules
  statutemap rules --export my-rules.yaml
  statutemap rules --rules ./custom-rules`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesDir, _ := cmd.Flags().GetString("rules")
			exportPath, _ := cmd.Flags().GetString("export")

			registry := citation.DefaultRegistry()
			if rulesDir != "" {
				if err := registry.LoadDirectory(rulesDir); err != nil {
					return fmt.Errorf("loading rules from %s: %w", rulesDir, err)
				}
			}

			if exportPath != "" {
				if err := registry.SaveFile(exportPath); err != nil {
					return err
				}
				fmt.Printf("Rule table exported to: %s\n", exportPath)
				return nil
			}

			fmt.Printf("Citation rules (%d):\n\n", registry.Count())
			for _, rule := range registry.Rules() {
				fmt.Printf("%s:\n", rule.Type)
				fmt.Printf("  pattern:  %s\n", rule.Pattern)
				fmt.Printf("  identity: %s\n\n", strings.Join(rule.Identity, " "))
			}
			return nil
		},
	}

	cmd.Flags().String("rules", "", "Directory of additional YAML rule files")
	cmd.Flags().String("export", "", "Write the rule table to a YAML file")
	return cmd
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "Show document format support on this system",
		RunE: func(cmd *cobra.Command, args []string) error {
			docLoader := loader.New()

			fmt.Println("Document format support:")
			for _, format := range docLoader.Formats() {
				if err := docLoader.Capability(format); err != nil {
					fmt.Printf("  .%s: not available - %v\n", format, err)
					continue
				}
				fmt.Printf("  .%s: available\n", format)
			}
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze a document whenever it changes",
		Long: `Watch a document file and rerun the analysis on every write,
printing the fresh report. Useful while editing a draft.

Example:
  statutemap watch --source brief.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			format, _ := cmd.Flags().GetString("format")

			if source == "" {
				return fmt.Errorf("--source flag is required")
			}

			analyzer, err := buildAnalyzer(cmd)
			if err != nil {
				return err
			}
			docLoader := loader.New()

			runOnce := func() {
				text, err := docLoader.Load(source)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					return
				}
				report, err := analyzer.AnalyzeDocument(text, source)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					return
				}
				rendered, err := renderReport(report, format)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					return
				}
				fmt.Println(rendered)
			}

			runOnce()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(source); err != nil {
				return fmt.Errorf("watching %s: %w", source, err)
			}
			fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl-C to stop)...\n", source)

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&fsnotify.Write == fsnotify.Write ||
						event.Op&fsnotify.Create == fsnotify.Create {
						fmt.Fprintf(os.Stderr, "\nChange detected, re-analyzing...\n")
						runOnce()
					}

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
				}
			}
		},
	}

	addAnalysisFlags(cmd)
	cmd.Flags().StringP("format", "f", "text", "Output format: text, table, or json")
	return cmd
}
