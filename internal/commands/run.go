// internal/commands/run.go
package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/dataset"
	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/export"
	"github.com/promptlab/promptlab/internal/util"
)

var successText = color.New(color.FgGreen).SprintFunc()
var warningText = color.New(color.FgYellow).SprintFunc()
var failureText = color.New(color.FgRed).SprintFunc()

// runCmd submits one experiment to the API server and reports the outcome.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a prompt experiment against a model",
	Long: `Run a prompt template against a model over a set of test samples. Samples
come from --sample flags or a --dataset JSON file. The prompt may reference
{text} and {expected_answer} placeholders, filled per sample on the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		prompt, _ := cmd.Flags().GetString("prompt")
		model, _ := cmd.Flags().GetString("model")
		systemContext, _ := cmd.Flags().GetString("system-context")
		datasetPath, _ := cmd.Flags().GetString("dataset")
		sampleFlags, _ := cmd.Flags().GetStringArray("sample")
		expectedFlags, _ := cmd.Flags().GetStringArray("expected")
		exportPath, _ := cmd.Flags().GetString("export")

		samples, loadedContext, err := collectSamples(datasetPath, sampleFlags, expectedFlags)
		if err != nil {
			return err
		}
		if systemContext == "" {
			systemContext = loadedContext
		}

		client := apiclient.New(cfg, appconfig.LoadKeys())
		exp, err := client.RunExperiment(cmd.Context(), prompt, systemContext, model, samples)
		if err != nil {
			return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
		}

		printExperiment(exp)

		if exportPath != "" {
			if err := export.WriteFile(exportPath, exp, nil); err != nil {
				return err
			}
			fmt.Printf("\nExported to %s\n", exportPath)
		}
		return nil
	},
}

// collectSamples merges dataset and flag samples. Flag samples pair each
// --sample with the --expected flag at the same position, when given.
func collectSamples(datasetPath string, sampleFlags, expectedFlags []string) ([]experiment.Sample, string, error) {
	var samples []experiment.Sample
	var systemContext string

	if datasetPath != "" {
		ds, err := dataset.Load(datasetPath)
		if err != nil {
			return nil, "", err
		}
		samples = ds.Samples
		systemContext = ds.SystemContext
	}

	for i, text := range sampleFlags {
		s := experiment.Sample{Text: text}
		if i < len(expectedFlags) {
			s.ExpectedAnswer = expectedFlags[i]
		}
		samples = append(samples, s)
	}
	return samples, systemContext, nil
}

// printExperiment renders the run result, coloring the outcome and surfacing
// the organization-verification hint when it applies.
func printExperiment(exp *experiment.Experiment) {
	outcome := experiment.Classify(exp.SampleResults)

	fmt.Printf("Experiment %s (%s)\n", exp.ExperimentID, exp.Model)
	switch outcome {
	case experiment.OutcomeAllSucceeded:
		fmt.Printf("Outcome: %s\n", successText(outcome.String()))
	case experiment.OutcomePartial:
		fmt.Printf("Outcome: %s\n", warningText(outcome.String()))
	default:
		fmt.Printf("Outcome: %s\n", failureText(outcome.String()))
	}

	fmt.Printf("Accuracy: %.1f%%  Avg tokens: %.1f  Estimated cost: $%.4f\n",
		exp.Accuracy, exp.AvgTokens, exp.EstimatedCost)
	fmt.Printf("Samples: %d tested, %d succeeded\n", exp.SamplesTested, exp.SuccessCount())

	for i, r := range exp.SampleResults {
		if r.Success {
			fmt.Printf("  %d. %s %s\n", i+1, successText("ok"), util.FirstLine(r.Output, 70))
		} else {
			fmt.Printf("  %d. %s %s\n", i+1, failureText("failed"), util.FirstLine(r.Error, 70))
		}
	}

	if outcome == experiment.OutcomeAllFailed {
		fmt.Println(warningText("\nAll samples failed; this run was not saved to history."))
	}
	if experiment.HasOrgVerificationFailure(exp.SampleResults) {
		fmt.Println(warningText(strings.Join([]string{
			"",
			"Your OpenAI organization appears to need verification for this model.",
			"Visit https://platform.openai.com/settings/organization/general to verify,",
			"or pick a model that does not require it.",
		}, "\n")))
	}
}

func init() {
	runCmd.Flags().StringP("prompt", "p", "", "prompt template, may use {text} and {expected_answer}")
	runCmd.Flags().StringP("model", "m", "", "model to test against (e.g., gpt-4, claude-3-haiku)")
	runCmd.Flags().String("system-context", "", "system context prepended to the prompt")
	runCmd.Flags().StringP("dataset", "d", "", "JSON dataset file with test samples")
	runCmd.Flags().StringArray("sample", nil, "test sample text (repeatable)")
	runCmd.Flags().StringArray("expected", nil, "expected answer for the sample at the same position (repeatable)")
	runCmd.Flags().String("export", "", "write the result artifact to this JSON file")
	_ = runCmd.MarkFlagRequired("prompt")
	_ = runCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(runCmd)
}
