package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pdfoutline"
	"github.com/brunobiangulo/pdfoutline/store"
)

var errNoStore = errors.New("no outline store configured (set store_path or PDFOUTLINE_STORE_PATH)")

func openStore() (*store.Store, error) {
	if cfg.StorePath == "" {
		return nil, errNoStore
	}
	return store.New(cfg.StorePath)
}

// absPath matches the keys the extractor stores documents under.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and maintain the outline store",
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the store location, schema version and document count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		v, err := s.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		docs, err := s.ListDocuments(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s\n", dimStyle.Render("Store:"), cfg.StorePath)
		fmt.Fprintf(w, "%s %d\n", dimStyle.Render("Schema version:"), v)
		fmt.Fprintf(w, "%s %d\n", dimStyle.Render("Documents:"), len(docs))
		return nil
	},
}

var storeLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored outlines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		docs, err := s.ListDocuments(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(docs) == 0 {
			fmt.Fprintln(w, warnStyle.Render("No stored documents"))
			return nil
		}
		for _, d := range docs {
			headings := "?"
			if res, err := pdfoutline.StoredResult(&d); err == nil {
				headings = strconv.Itoa(len(res.Outline))
			}
			fmt.Fprintf(w, "%s %s %s\n",
				dimStyle.Render(fmt.Sprintf("%4d", d.ID)),
				d.Path,
				dimStyle.Render(fmt.Sprintf("[%s, %s headings, %s]", d.Method, headings, d.UpdatedAt)))
		}
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show <id|path>",
	Short: "Print a stored outline as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var doc *store.Document
		if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
			doc, err = s.GetDocument(cmd.Context(), id)
		} else {
			doc, err = s.GetDocumentByPath(cmd.Context(), absPath(args[0]))
		}
		if err != nil {
			return fmt.Errorf("no stored outline for %s: %w", args[0], err)
		}

		res, err := pdfoutline.StoredResult(doc)
		if err != nil {
			return err
		}
		data, err := pdfoutline.Marshal(res)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var storePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stored outlines whose source file no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.Prune(cmd.Context())
		w := cmd.OutOrStdout()
		for _, d := range removed {
			fmt.Fprintf(w, "%s %s\n", errorStyle.Render("-"), d.Path)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %d\n", dimStyle.Render("Removed:"), len(removed))
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeInfoCmd, storeLsCmd, storeShowCmd, storePruneCmd)
	rootCmd.AddCommand(storeCmd)
}
