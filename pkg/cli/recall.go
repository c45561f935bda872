package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/secmon-lab/ganit/pkg/agent"
	"github.com/urfave/cli/v3"
)

func cmdRecall() *cli.Command {
	var rt runtimeConfig
	var topK int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Maximum number of memories (0 uses the pipeline configuration)",
			Destination: &topK,
		},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:      "recall",
		Usage:     "Show verified solves similar to a problem and the bias derived from them",
		ArgsUsage: "PROBLEM_TEXT",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := problemArg(c)
			if err != nil {
				return err
			}

			uc, cleanup, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			memories, err := uc.Memory.Recall(ctx, raw, topK)
			if err != nil {
				return err
			}

			if len(memories) == 0 {
				_, _ = dimColor.Fprintln(os.Stdout, "No similar verified solves.")
				return nil
			}

			_, _ = headingColor.Fprintln(os.Stdout, "== Recalled memory ==")
			for _, mem := range memories {
				question := ""
				topic := ""
				if mem.ParsedProblem != nil {
					question = mem.ParsedProblem.Text
					topic = string(mem.ParsedProblem.Topic)
				}
				_, _ = fmt.Fprintf(os.Stdout, "  (%.3f) [%s] %s => %s\n", mem.Similarity, topic, question, mem.FinalAnswer)
			}
			renderBias(os.Stdout, agent.ExtractBias(memories))
			return nil
		},
	}
}
