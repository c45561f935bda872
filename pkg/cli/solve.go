package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/agent/progress"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func problemArg(c *cli.Command) (string, error) {
	raw := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(raw) == "" {
		return "", goerr.Wrap(usecase.ErrEmptyProblem, "problem text argument is required")
	}
	return raw, nil
}

// problemInput names where the problem text comes from
type problemInput struct {
	args      []string
	imagePath string
	audioPath string
	accept    bool
}

// resolveProblem returns the problem text to solve. Text recognized from an image or
// audio file is printed to w; when its confidence is low and accept is false, ok is
// false and the caller stops so the user can confirm or edit the text.
func resolveProblem(ctx context.Context, w io.Writer, input *usecase.InputUseCase, src problemInput) (raw string, ok bool, err error) {
	if src.imagePath != "" && src.audioPath != "" {
		return "", false, goerr.New("--image and --audio cannot be used together")
	}

	var extracted *model.ExtractedInput
	switch {
	case src.imagePath != "":
		if len(src.args) > 0 {
			return "", false, goerr.New("problem text cannot be combined with --image")
		}
		extracted, err = input.FromImage(ctx, src.imagePath)
	case src.audioPath != "":
		if len(src.args) > 0 {
			return "", false, goerr.New("problem text cannot be combined with --audio")
		}
		extracted, err = input.FromAudio(ctx, src.audioPath)
	default:
		raw = strings.Join(src.args, " ")
		if strings.TrimSpace(raw) == "" {
			return "", false, goerr.Wrap(usecase.ErrEmptyProblem, "problem text argument is required")
		}
		return raw, true, nil
	}
	if err != nil {
		return "", false, err
	}

	renderExtracted(w, extracted)
	if strings.TrimSpace(extracted.Text) == "" {
		return "", false, goerr.Wrap(usecase.ErrEmptyProblem, "no text was recognized")
	}
	if extracted.NeedsConfirmation && !src.accept {
		return extracted.Text, false, nil
	}
	return extracted.Text, true, nil
}

func cmdSolve() *cli.Command {
	var rt runtimeConfig
	var clarifications []string
	var feedback string
	var strict bool
	var imagePath, audioPath string
	var acceptInput bool

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "clarify",
			Usage:       "Clarification answer appended to the problem (repeatable)",
			Destination: &clarifications,
		},
		&cli.StringFlag{
			Name:        "feedback",
			Usage:       "Feedback stored with the verified solve",
			Destination: &feedback,
		},
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "Exit with an error when no grounding context is found",
			Destination: &strict,
		},
		&cli.StringFlag{
			Name:        "image",
			Usage:       "Read the problem from an image (needs --gemini-project)",
			TakesFile:   true,
			Destination: &imagePath,
		},
		&cli.StringFlag{
			Name:        "audio",
			Usage:       "Read the problem from an audio file transcribed by whisper.cpp (-ojf writes AUDIO.json)",
			TakesFile:   true,
			Destination: &audioPath,
		},
		&cli.BoolFlag{
			Name:        "accept-input",
			Usage:       "Solve recognized text even when its confidence is low",
			Destination: &acceptInput,
		},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:      "solve",
		Usage:     "Solve a math word problem",
		ArgsUsage: "[PROBLEM_TEXT]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := rt.build(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			raw, ok, err := resolveProblem(ctx, os.Stdout, uc.Input, problemInput{
				args:      c.Args().Slice(),
				imagePath: imagePath,
				audioPath: audioPath,
				accept:    acceptInput,
			})
			if err != nil || !ok {
				return err
			}

			var opts []usecase.SolveOption
			if feedback != "" {
				opts = append(opts, usecase.WithFeedback(feedback))
			}
			if strict {
				opts = append(opts, usecase.WithStrictGrounding())
			}

			ctx = progress.WithReporter(ctx, progressPrinter(os.Stderr))

			if len(clarifications) > 0 {
				run, err := uc.Pipeline.Clarify(ctx, raw, clarifications, opts...)
				if run != nil {
					renderRun(os.Stdout, run)
				}
				return err
			}

			run, err := uc.Pipeline.Solve(ctx, raw, opts...)
			if run != nil {
				renderRun(os.Stdout, run)
			}
			return err
		},
	}
}

func cmdClarify() *cli.Command {
	var rt runtimeConfig
	var answers []string

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "answer",
			Aliases:     []string{"a"},
			Usage:       "Answer to a clarification question (repeatable)",
			Required:    true,
			Destination: &answers,
		},
	}
	flags = append(flags, rt.Flags()...)

	return &cli.Command{
		Name:      "clarify",
		Usage:     "Re-run a problem with clarification answers appended",
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

			ctx = progress.WithReporter(ctx, progressPrinter(os.Stderr))
			run, err := uc.Pipeline.Clarify(ctx, raw, answers)
			if run != nil {
				renderRun(os.Stdout, run)
			}
			return err
		},
	}
}
