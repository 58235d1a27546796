package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ledgersync/ledgersync/pkg/books"
	"github.com/ledgersync/ledgersync/pkg/differ"
	"github.com/ledgersync/ledgersync/pkg/errors"
)

// titleCaser renders document type names for human output, e.g.
// "purchase_order" as "Purchase Order".
var titleCaser = cases.Title(language.English)

func typeTitle(docType books.DocumentType) string {
	return titleCaser.String(strings.ReplaceAll(string(docType), "_", " "))
}

// commands builds the cobra command tree.
func (a *App) commands() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgersync",
		Short: "Sync accounting documents and their lines with the books backend",
		Long: `ledgersync saves accounting documents (invoices, bills, estimates,
purchase orders, vendor credits, sales receipts) against the books backend.
The parent record is created or patched first, then the backend's line
collection is reconciled with the draft's lines: creates for new lines,
updates for kept lines, deletes for dropped ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log warnings and errors")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("base-url", "", "backend base URL (env LEDGERSYNC_BASE_URL)")
	flags.String("api-key", "", "backend API key (env LEDGERSYNC_API_KEY)")

	root.AddCommand(a.diffCommand())
	root.AddCommand(a.pushCommand())
	root.AddCommand(a.pullCommand())
	root.AddCommand(a.versionCommand())

	return root
}

// loadDraft reads a document draft from a YAML file.
func loadDraft(path string) (*books.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}

	var doc books.Document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseJSONUnmarshaler()); err != nil {
		return nil, errors.NewParseError("yaml", path, "invalid document draft", err)
	}
	if !doc.Type.Valid() {
		return nil, errors.NewValidationError("type", string(doc.Type), "unknown document type")
	}

	return &doc, nil
}

func (a *App) diffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <draft.yaml>",
		Short: "Show what a push would change, without applying anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(args[0])
			if err != nil {
				return err
			}

			var existing []books.LineItem
			if draft.ID != "" {
				client, err := a.client()
				if err != nil {
					return err
				}
				persisted, err := client.Document(cmd.Context(), draft.Type, draft.ID)
				if err != nil {
					return err
				}
				existing = persisted.Lines
			}

			changeset := differ.New().Lines(existing, draft.Lines)

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n",
				typeTitle(draft.Type), draft.Number, changeset.String())
			if changeset.HasChanges() {
				fmt.Fprint(cmd.OutOrStdout(), changeset.Format())
			}
			return nil
		},
	}
}

func (a *App) pushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <draft.yaml>",
		Short: "Save a document draft and reconcile its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(args[0])
			if err != nil {
				return err
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			result, err := client.SaveDocument(cmd.Context(), draft)
			if err != nil {
				// Partial failures still applied something worth reporting.
				if result != nil && errors.IsPartialApply(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s partially applied: %s\n",
						typeTitle(draft.Type), draft.Number, result.Summary())
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s saved (%s): %s\n",
				typeTitle(draft.Type), draft.Number, draft.ID, result.Summary())
			return nil
		},
	}
}

func (a *App) pullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <type> <id>",
		Short: "Fetch a document with its lines and write it as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType := books.DocumentType(strings.ToLower(args[0]))
			if !docType.Valid() {
				return errors.NewValidationError("type", args[0], "unknown document type")
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			doc, err := client.Document(cmd.Context(), docType, args[1])
			if err != nil {
				return err
			}

			data, err := yaml.MarshalWithOptions(doc, yaml.UseJSONMarshaler())
			if err != nil {
				return errors.NewParseError("yaml", args[1], "encoding document", err)
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.NewIOError("write", output, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledgersync %s (commit %s, built %s)\n",
				a.version, a.commit, a.date)
		},
	}
}
