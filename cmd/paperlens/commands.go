package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"paperlens/internal/models"
	"paperlens/internal/util"

	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <paper.pdf>",
	Short: "List the detected sections of a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, sessionID, err := openPaper(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.Close()
		secs, err := a.svc.Sections(sessionID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, s := range secs {
			fmt.Fprintf(out, "%2d. %-24s %7d chars", i+1, s.Name, len(s.Text))
			if s.Heading != "" && s.Heading != s.Name {
				fmt.Fprintf(out, "  (%s)", util.DisplaySnippet(s.Heading, 40))
			}
			fmt.Fprintln(out)
			if preview := util.DisplaySnippet(s.Text, 100); preview != "" {
				fmt.Fprintf(out, "    %s\n", preview)
			}
		}
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <paper.pdf>",
	Short: "Summarize one section, or every section when --section is omitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("section")
		a, sessionID, err := openPaper(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		names := []string{name}
		if name == "" {
			secs, err := a.svc.Sections(sessionID)
			if err != nil {
				return err
			}
			names = names[:0]
			for _, s := range secs {
				names = append(names, s.Name)
			}
		}
		out := cmd.OutOrStdout()
		for _, n := range names {
			res, err := a.svc.GetSummary(cmd.Context(), sessionID, n)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n\n%s\n", res.Section, res.Text)
			if res.Truncated {
				fmt.Fprintln(out, "\n(section was truncated before summarizing)")
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <paper.pdf> [question]",
	Short: "Answer a question about a paper; without a question, read questions from stdin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, sessionID, err := openPaper(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.Close()
		out := cmd.OutOrStdout()

		if len(args) > 1 {
			return ask(cmd, a, sessionID, strings.Join(args[1:], " "), out)
		}
		fmt.Fprintln(out, "Ask about the paper (empty line or Ctrl-D to quit).")
		sc := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				return sc.Err()
			}
			q := strings.TrimSpace(sc.Text())
			if q == "" {
				return nil
			}
			if err := ask(cmd, a, sessionID, q, out); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <paper.pdf>",
	Short: "Print keyword, citation and section statistics as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, sessionID, err := openPaper(cmd, args[0])
		if err != nil {
			return err
		}
		defer a.Close()
		stats, err := a.svc.Stats(sessionID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	summarizeCmd.Flags().StringP("section", "s", "", "section name, case-insensitive")
}

func openPaper(cmd *cobra.Command, path string) (*app, string, error) {
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	sessionID, err := a.load(cmd.Context(), path)
	if err != nil {
		a.Close()
		return nil, "", err
	}
	return a, sessionID, nil
}

func ask(cmd *cobra.Command, a *app, sessionID, question string, out io.Writer) error {
	res, err := a.svc.Chat(cmd.Context(), sessionID, question)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n\n[%s]\n", res.Text, groundednessLabel(res))
	for i, s := range res.Sources {
		fmt.Fprintf(out, "  %d. %s", i+1, s.Section)
		if s.Page > 0 {
			fmt.Fprintf(out, ", p.%d", s.Page)
		}
		fmt.Fprintf(out, " (%.2f): %s\n", s.Score, s.Snippet)
	}
	fmt.Fprintln(out)
	return nil
}

func groundednessLabel(res models.AnswerResult) string {
	switch {
	case res.Insufficient:
		return "not found in the paper"
	case res.Groundedness == models.Blended:
		return "paper + general knowledge"
	case res.Groundedness == models.General:
		return "general knowledge"
	default:
		return "from the paper"
	}
}
