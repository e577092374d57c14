package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	"github.com/wolfman30/coparent-mediator/internal/rewrite"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

const defaultScenarios = "internal/codelayer/testdata/scenarios.json"

type rootOptions struct {
	in       io.Reader
	out      io.Writer
	pretty   bool
	logLevel string
	sender   string
	receiver string
	children []string
	timeout  time.Duration
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{in: in, out: out}
	root := &cobra.Command{
		Use:           "codelayer",
		Short:         "Analyze co-parenting messages with the code layer pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")

	root.AddCommand(
		newParseCmd(opts),
		newScenariosCmd(opts),
		newQuickCheckCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

func (o *rootOptions) parser() *codelayer.Parser {
	return codelayer.NewParser(codelayer.WithLogger(logging.NewWithWriter(o.logLevel, os.Stderr)))
}

func (o *rootOptions) parsingContext() codelayer.ParsingContext {
	return codelayer.ParsingContext{SenderID: o.sender, ReceiverID: o.receiver, ChildNames: o.children}
}

func (o *rootOptions) write(v any) error {
	enc := json.NewEncoder(o.out)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// texts returns the joined args, or one message per non-blank stdin line.
func (o *rootOptions) texts(args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	var lines []string
	sc := bufio.NewScanner(o.in)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(lines) == 0 {
		return nil, errors.New("no message given")
	}
	return lines, nil
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse a message (or stdin lines) and print the analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := opts.texts(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			msgs := make([]codelayer.Message, len(texts))
			for i, t := range texts {
				msgs[i] = codelayer.Message{Text: t, SenderID: opts.sender}
			}
			results, err := opts.parser().ParseBatch(ctx, msgs, opts.parsingContext())
			if err != nil {
				return err
			}
			for _, pm := range results {
				if err := opts.write(pm); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.sender, "sender", "", "sender id")
	cmd.Flags().StringVar(&opts.receiver, "receiver", "", "receiver id")
	cmd.Flags().StringSliceVar(&opts.children, "child", nil, "child name (repeatable)")
	return cmd
}

type scenario struct {
	Name    string                   `json:"name"`
	Text    string                   `json:"text"`
	Context codelayer.ParsingContext `json:"context"`
	Expect  struct {
		Fired             []string `json:"fired"`
		Transmit          bool     `json:"transmit"`
		ConflictPotential string   `json:"conflictPotential"`
	} `json:"expect"`
}

type scenarioResult struct {
	Name              string   `json:"name"`
	Pass              bool     `json:"pass"`
	Fired             []string `json:"fired"`
	Transmit          bool     `json:"transmit"`
	ConflictPotential string   `json:"conflictPotential"`
	Mismatch          []string `json:"mismatch,omitempty"`
}

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Replay a scenario file and report expectation mismatches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read scenarios: %w", err)
			}
			var scenarios []scenario
			if err := json.Unmarshal(raw, &scenarios); err != nil {
				return fmt.Errorf("decode scenarios: %w", err)
			}

			p := opts.parser()
			failed := 0
			for _, sc := range scenarios {
				pm := p.Parse(cmd.Context(), codelayer.Message{Text: sc.Text}, sc.Context)
				res := checkScenario(sc, pm)
				if !res.Pass {
					failed++
				}
				if err := opts.write(res); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(scenarios))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", defaultScenarios, "scenario file")
	return cmd
}

func checkScenario(sc scenario, pm *codelayer.ParsedMessage) scenarioResult {
	res := scenarioResult{
		Name:              sc.Name,
		Fired:             []string{},
		Transmit:          pm.Assessment.Transmit,
		ConflictPotential: string(pm.Assessment.ConflictPotential),
	}
	for _, a := range pm.Axioms {
		res.Fired = append(res.Fired, a.ID)
	}
	if !sameSet(res.Fired, sc.Expect.Fired) {
		res.Mismatch = append(res.Mismatch, fmt.Sprintf("fired %v, want %v", res.Fired, sc.Expect.Fired))
	}
	if res.Transmit != sc.Expect.Transmit {
		res.Mismatch = append(res.Mismatch, fmt.Sprintf("transmit %v, want %v", res.Transmit, sc.Expect.Transmit))
	}
	if sc.Expect.ConflictPotential != "" && res.ConflictPotential != sc.Expect.ConflictPotential {
		res.Mismatch = append(res.Mismatch, fmt.Sprintf("conflict %s, want %s", res.ConflictPotential, sc.Expect.ConflictPotential))
	}
	res.Pass = len(res.Mismatch) == 0
	return res
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}

func newQuickCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quick-check [text...]",
		Short: "Run the cheap red-flag pre-screen",
		RunE: func(_ *cobra.Command, args []string) error {
			texts, err := opts.texts(args)
			if err != nil {
				return err
			}
			for _, t := range texts {
				if err := opts.write(map[string]any{"text": t, "flagged": codelayer.QuickCheck(t)}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var original string
	cmd := &cobra.Command{
		Use:   "validate [rewrite...]",
		Short: "Check that a rewrite is in the sender's voice",
		RunE: func(_ *cobra.Command, args []string) error {
			texts, err := opts.texts(args)
			if err != nil {
				return err
			}
			for _, t := range texts {
				if err := opts.write(rewrite.ValidateRewritePerspective(t, original)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&original, "original", "", "the message being rewritten")
	return cmd
}
