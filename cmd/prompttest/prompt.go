package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-assistant/internal/bootstrap"
	"resume-assistant/internal/llm"
	"resume-assistant/internal/shared/config"
)

var (
	promptResume string
	promptJD     string
	promptSend   bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt <kind>",
	Short: "Render a prompt template and optionally send it to the configured provider",
	Long: fmt.Sprintf(`Render one of the prompt templates for a resume.

Kinds: %s`, strings.Join(llm.PromptKinds(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&promptResume, "resume", "r", "", "Path to the resume file (required)")
	promptCmd.Flags().StringVarP(&promptJD, "jd", "j", "", "Path to a job description file")
	promptCmd.Flags().BoolVar(&promptSend, "send", false, "Send the prompt and print the reply")
	_ = promptCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	resume, err := readDocument(cmd.Context(), promptResume)
	if err != nil {
		return err
	}
	var jd string
	if promptJD != "" {
		if jd, err = readDocument(cmd.Context(), promptJD); err != nil {
			return err
		}
	}

	prompt, err := renderPrompt(args[0], resume, jd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !promptSend {
		fmt.Fprintln(out, prompt)
		return nil
	}

	client, closeFn, err := bootstrap.BuildLLMClient(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	reply := llm.Ask(llm.WithFeature(cmd.Context(), args[0]), client, prompt)
	fmt.Fprintln(out, reply.String())
	if reply.Failed() {
		return reply.Err
	}
	return nil
}

func renderPrompt(kind, resume, jd string) (string, error) {
	switch kind {
	case llm.KindAnalysis:
		return llm.AnalysisPrompt(resume), nil
	case llm.KindQuiz:
		return llm.QuizPrompt(resume), nil
	case llm.KindRecommendations:
		return llm.RecommendationsPrompt(resume, "[]", 0, 0), nil
	case llm.KindCoverLetter, llm.KindJobMatch:
		if strings.TrimSpace(jd) == "" {
			return "", fmt.Errorf("%s needs --jd", kind)
		}
		if kind == llm.KindCoverLetter {
			return llm.CoverLetterPrompt(resume, jd), nil
		}
		return llm.JobMatchPrompt(resume, jd), nil
	default:
		return "", fmt.Errorf("unknown prompt kind %q (want one of %s)", kind, strings.Join(llm.PromptKinds(), ", "))
	}
}
