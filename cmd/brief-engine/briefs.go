// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/brief-engine/internal/store"
)

var briefsCmd = &cobra.Command{
	Use:   "briefs",
	Short: "Inspect and export saved briefs",
}

// --- list subcommand ---

var briefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved briefs, newest first",
	RunE:  runBriefsList,
}

func runBriefsList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	userID, _ := cmd.Flags().GetString("user")
	records, err := s.ListBriefs(context.Background(), userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No briefs saved.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-12s  %s\n", "ID", "Created", "User", "Topic")
	fmt.Println(strings.Repeat("-", 90))
	for _, r := range records {
		fmt.Printf("%-36s  %-19s  %-12s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.UserID, r.Topic)
	}
	fmt.Printf("\n%d briefs\n", len(records))
	return nil
}

// --- show subcommand ---

var briefsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one brief as Markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runBriefsShow,
}

func runBriefsShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	record, err := s.GetBrief(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}
	fmt.Print(store.RenderMarkdown(record))
	return nil
}

// --- export subcommand ---

var briefsExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export one brief to YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runBriefsExport,
}

func runBriefsExport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	record, err := s.GetBrief(context.Background(), args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		return store.WriteYAML(out, record)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func openStore() (*store.Store, error) {
	return store.NewStore(pipelineConfig().Store)
}

func init() {
	briefsListCmd.Flags().String("user", "", "only list briefs for this account")
	briefsShowCmd.Flags().Bool("json", false, "output the record as JSON")
	briefsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	briefsExportCmd.Flags().String("output", "", "write to a file instead of stdout")

	briefsCmd.AddCommand(briefsListCmd)
	briefsCmd.AddCommand(briefsShowCmd)
	briefsCmd.AddCommand(briefsExportCmd)
	rootCmd.AddCommand(briefsCmd)
}
