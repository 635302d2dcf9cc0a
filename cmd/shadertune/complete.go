package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shadertune/internal/complete"
	"shadertune/internal/keywords"
	"shadertune/internal/workspace"
)

var completeCmd = &cobra.Command{
	Use:   "complete [flags] <file>",
	Short: "Print completions at a byte offset of a shader file",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().Int("offset", -1, "byte offset of the cursor (-1 = end of file)")
	completeCmd.Flags().String("language", "", "keyword database (msl|wgsl, default: from the file extension)")
	completeCmd.Flags().String("format", "text", "output format (text|json)")
}

type completionPayload struct {
	Prefix string           `json:"prefix"`
	Start  int              `json:"start"`
	End    int              `json:"end"`
	Items  []completionJSON `json:"items"`
}

type completionJSON struct {
	Text        string `json:"text"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
}

func runComplete(cmd *cobra.Command, args []string) error {
	offset, err := cmd.Flags().GetInt("offset")
	if err != nil {
		return fmt.Errorf("failed to get offset flag: %w", err)
	}
	langFlag, err := cmd.Flags().GetString("language")
	if err != nil {
		return fmt.Errorf("failed to get language flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}

	lang := languageForPath(args[0])
	if langFlag != "" {
		if lang, err = keywords.ParseLanguage(langFlag); err != nil {
			return err
		}
	}

	text, err := workspace.Load(args[0])
	if err != nil {
		return err
	}
	if offset < 0 || offset > len(text) {
		offset = len(text)
	}

	engine := complete.New(keywords.ForLanguage(lang))
	items := engine.Complete(text, offset)
	prefix, _ := complete.PartialWord(text, offset)
	start, end, ok := engine.WordRange(text, offset)
	if !ok {
		start, end = offset, offset
	}

	if format == "json" {
		payload := completionPayload{Prefix: prefix, Start: start, End: end, Items: make([]completionJSON, len(items))}
		for i, it := range items {
			payload.Items[i] = completionJSON{Text: it.Text, Kind: it.Kind.String(), Description: it.Description, Snippet: it.Snippet}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	printCompletions(cmd.OutOrStdout(), items)
	return nil
}

func printCompletions(out io.Writer, items []keywords.Item) {
	width := 0
	for _, it := range items {
		width = max(width, len(it.Text))
	}
	for _, it := range items {
		fmt.Fprintf(out, "%-*s  %-9s  %s\n", width, it.Text, it.Kind.DisplayName(), it.Description)
	}
}

// languageForPath picks the database from the file extension, falling back
// to the configured backend's language.
func languageForPath(path string) keywords.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case keywords.LangWGSL.Extension():
		return keywords.LangWGSL
	case keywords.LangMetal.Extension():
		return keywords.LangMetal
	}
	return cfg.Language()
}
