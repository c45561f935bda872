package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/secmon-lab/ganit/pkg/agent/progress"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	okColor      = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errColor     = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

// progressPrinter writes each pipeline stage as a dimmed status line
func progressPrinter(w io.Writer) progress.Reporter {
	return func(_ context.Context, ev progress.Event) {
		_, _ = dimColor.Fprintf(w, "  [%s] %s\n", ev.Stage, ev.Message)
	}
}

func renderRun(w io.Writer, run *model.Run) {
	_, _ = headingColor.Fprintln(w, "== Parsed problem ==")
	if p := run.Parsed; p != nil {
		renderField(w, "Text", p.Text)
		renderField(w, "Topic", string(p.Topic))
		renderField(w, "Variables", joinOrNone(p.Variables))
		renderField(w, "Constraints", joinOrNone(p.Constraints))
		if p.NeedsClarification {
			_, _ = warnColor.Fprintln(w, "Clarification suggested:")
			renderList(w, p.ClarificationQuestions)
		}
	}

	if len(run.Recalled) > 0 {
		_, _ = headingColor.Fprintln(w, "== Recalled memory ==")
		for _, mem := range run.Recalled {
			_, _ = fmt.Fprintf(w, "  (%.3f) %s\n", mem.Similarity, mem.FinalAnswer)
		}
	}

	if len(run.Retrieved) > 0 {
		_, _ = headingColor.Fprintln(w, "== Retrieved context ==")
		for _, c := range run.Retrieved {
			_, _ = fmt.Fprintf(w, "  %s [%s/%s]\n", c.Source, c.Topic, c.Difficulty)
		}
	}

	switch run.Status {
	case types.RunStatusNoGrounding:
		_, _ = errColor.Fprintln(w, "I don't know. No supporting context was found in the knowledge base.")
		return

	case types.RunStatusReviewRequired:
		renderRoute(w, run)
		_, _ = warnColor.Fprintln(w, "== Human review required ==")
		if v := run.Verification; v != nil {
			renderField(w, "Confidence", fmt.Sprintf("%.3f", v.Confidence))
			renderList(w, v.Issues)
		}
		if d := run.Draft; d != nil {
			_, _ = labelColor.Fprintln(w, "Correction draft:")
			renderField(w, "  Question", d.Question)
			renderField(w, "  Answer", d.Answer)
			_, _ = dimColor.Fprintln(w, "Submit with: ganit correct --question ... --answer ... --approve")
		}
		return

	case types.RunStatusCompleted:
		renderRoute(w, run)
		_, _ = okColor.Fprintln(w, "== Answer ==")
		if e := run.Explanation; e != nil {
			for i, step := range e.ExplanationSteps {
				_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, step)
			}
			renderField(w, "Final answer", e.FinalAnswer)
			if len(e.CommonMistakes) > 0 {
				_, _ = labelColor.Fprintln(w, "Common mistakes:")
				renderList(w, e.CommonMistakes)
			}
		}
		if v := run.Verification; v != nil {
			renderField(w, "Confidence", fmt.Sprintf("%.3f", v.Confidence))
		}
		if run.Persisted {
			_, _ = dimColor.Fprintln(w, "Stored as verified solve.")
		}
	}
}

func renderRoute(w io.Writer, run *model.Run) {
	if run.Route == nil {
		return
	}
	_, _ = headingColor.Fprintln(w, "== Route ==")
	renderField(w, "Domain", string(run.Route.Domain))
	renderField(w, "Style", string(run.Route.SolutionStyle))
	renderField(w, "Reason", run.Route.Reason)
	if run.Solution != nil {
		renderField(w, "Strategy", string(run.Solution.StrategyUsed))
	}
}

func renderBias(w io.Writer, bias *model.SolverBias) {
	if bias == nil {
		return
	}
	_, _ = headingColor.Fprintln(w, "== Solver bias ==")
	renderList(w, bias.PreferredStrategies)
	renderList(w, bias.Warnings)
}

func renderExtracted(w io.Writer, in *model.ExtractedInput) {
	_, _ = headingColor.Fprintln(w, "== Recognized input ==")
	renderField(w, "Text", in.Text)
	renderField(w, "Confidence", fmt.Sprintf("%.3f", in.Confidence))
	if !in.NeedsConfirmation {
		return
	}
	if in.Highlighted != "" {
		renderField(w, "Uncertain words", in.Highlighted)
	}
	_, _ = warnColor.Fprintln(w, "Low recognition confidence. Check the text above and re-run with the corrected text, or pass --accept-input.")
}

func renderField(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "%s: ", label)
	_, _ = fmt.Fprintln(w, value)
}

func renderList(w io.Writer, items []string) {
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
