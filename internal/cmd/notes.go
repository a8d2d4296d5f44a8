package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	notestore "github.com/notelink/notelink/internal/notes/store"
)

var (
	notesListLimit     int
	notesListAnonymous bool
	notesListOutput    string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect and manage stored notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(notesListOutput))
		switch format {
		case "", "table":
			format = "table"
		case "json":
		default:
			return fmt.Errorf("unsupported output format: %s", notesListOutput)
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		records, err := db.List(cmd.Context(), notestore.ListFilter{
			Limit:         notesListLimit,
			AnonymousOnly: notesListAnonymous,
		})
		if err != nil {
			return err
		}

		if format == "json" {
			payload, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(payload))
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Sender", "Contact", "Note", "Reply", "Audio", "Created"})
		for _, record := range records {
			audio := ""
			if record.AudioURL != "" {
				audio = "yes"
			}
			t.AppendRow(table.Row{
				record.ID,
				record.SenderName,
				record.SenderContact,
				truncate(record.Content, 48),
				truncate(record.WebhookReply, 24),
				audio,
				record.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()

		fmt.Printf("\n%d note(s)\n", len(records))
		return nil
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored note by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		id := strings.TrimSpace(args[0])
		if err := db.Delete(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("deleted note %s\n", id)
		return nil
	},
}

// truncate shortens value to at most max display runes, never splitting a
// multi-byte character.
func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesDeleteCmd)

	notesListCmd.Flags().IntVar(&notesListLimit, "limit", 0, "Maximum number of notes to show (0 = all)")
	notesListCmd.Flags().BoolVar(&notesListAnonymous, "anonymous", false, "Show only anonymous notes")
	notesListCmd.Flags().StringVar(&notesListOutput, "output-format", "table", "Output format: table|json")
}
