package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"resume-assistant/internal/bootstrap"
	"resume-assistant/internal/llm"
	"resume-assistant/internal/quiz"
	"resume-assistant/internal/shared/config"
)

var (
	quizResume  string
	quizShowRaw bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a skills quiz for a resume and validate its structure",
	RunE:  runQuiz,
}

func init() {
	quizCmd.Flags().StringVarP(&quizResume, "resume", "r", "", "Path to the resume file (required)")
	quizCmd.Flags().BoolVar(&quizShowRaw, "raw", false, "Print the raw model output before validation")
	_ = quizCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	resume, err := readDocument(cmd.Context(), quizResume)
	if err != nil {
		return err
	}
	client, closeFn, err := bootstrap.BuildLLMClient(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	out := cmd.OutOrStdout()
	reply := llm.Ask(llm.WithFeature(cmd.Context(), llm.KindQuiz), client, llm.QuizPrompt(resume))
	if reply.Failed() {
		return fmt.Errorf("quiz completion: %w", reply.Err)
	}
	if quizShowRaw {
		fmt.Fprintln(out, reply.Text)
	}

	spec, err := quiz.Decode(reply.Text)
	var structErr *quiz.StructureError
	switch {
	case errors.As(err, &structErr):
		for _, f := range structErr.Fields {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
		}
		return err
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "%d skills, %d questions\n", len(spec), spec.QuestionCount())
	fmt.Fprintln(out, spec.IndentedJSON())
	return nil
}
