package utils

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/picogrid/intersection-simulations/pkg/policy"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

const otherDataDir = "Other..."

// argEnvKeys name the environment variables that seed each positional argument
var argEnvKeys = []string{"AIM_POLICY", "AIM_DATA_DIR", "AIM_STATIC_BUFFER", "AIM_INTERNAL_BUFFER", "AIM_EDGE_BUFFER"}

// PromptForArgs asks for the five positional run arguments. defaults seeds
// every prompt and may be nil; dataSets are offered as data directory
// choices. With AIM_SKIP_PROMPTS=true no prompt is shown and the seeded
// values are returned.
func PromptForArgs(defaults []string, dataSets []DataSet) ([]string, error) {
	args := SeedArgs(defaults)

	if os.Getenv("AIM_SKIP_PROMPTS") == "true" {
		return args, nil
	}

	policyToken, err := promptPolicy(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", policy.ArgNames[0], err)
	}
	args[0] = policyToken

	dataDir, err := promptDataDir(args[1], dataSets)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", policy.ArgNames[1], err)
	}
	args[1] = dataDir

	// Buffers only matter to the reservation policy
	if args[0] != simulation.KindReservationFCFS.Token() {
		return args, nil
	}

	for i := 2; i < len(args); i++ {
		value, err := promptBuffer(policy.ArgNames[i], args[i])
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", policy.ArgNames[i], err)
		}
		args[i] = value
	}

	return args, nil
}

// SeedArgs returns defaults, or policy.DefaultArgs when defaults is not a
// complete argument list, with AIM_* environment overrides applied.
func SeedArgs(defaults []string) []string {
	args := make([]string, len(policy.DefaultArgs))
	copy(args, policy.DefaultArgs)
	if len(defaults) == len(args) {
		copy(args, defaults)
	}

	for i, key := range argEnvKeys {
		if v := os.Getenv(key); v != "" {
			args[i] = v
		}
	}
	return args
}

func promptPolicy(defaultToken string) (string, error) {
	options := make([]string, len(simulation.Kinds))
	descriptions := make(map[string]string)
	for i, k := range simulation.Kinds {
		options[i] = k.Token()
		descriptions[k.Token()] = k.Description()
	}

	prompt := &survey.Select{
		Message: "Select policy:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if _, ok := simulation.ParseKind(defaultToken); ok {
		prompt.Default = defaultToken
	}

	var result string
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func promptDataDir(defaultDir string, dataSets []DataSet) (string, error) {
	if len(dataSets) > 0 {
		options := make([]string, 0, len(dataSets)+1)
		descriptions := make(map[string]string)
		for _, set := range dataSets {
			options = append(options, set.Path)
			descriptions[set.Path] = describeDataSet(set)
		}
		options = append(options, otherDataDir)

		prompt := &survey.Select{
			Message: "Select data directory:",
			Options: options,
			Description: func(value string, index int) string {
				return descriptions[value]
			},
		}
		if _, ok := descriptions[defaultDir]; ok {
			prompt.Default = defaultDir
		}

		var selected string
		if err := survey.AskOne(prompt, &selected); err != nil {
			return "", err
		}
		if selected != otherDataDir {
			return selected, nil
		}
	}

	prompt := &survey.Input{
		Message: "Data directory:",
		Default: defaultDir,
		Help:    fmt.Sprintf("Directory holding %s and, for SIGNAL, %s", policy.VolumeFileName, policy.PhaseFileName),
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return result, nil
}

func promptBuffer(name, defaultValue string) (string, error) {
	prompt := &survey.Input{
		Message: strings.ToUpper(name[:1]) + name[1:] + " (s):",
		Default: defaultValue,
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(survey.Required, validateSeconds))); err != nil {
		return "", err
	}
	return result, nil
}

// validateSeconds accepts finite decimal numbers
func validateSeconds(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return fmt.Errorf("expected text, got %T", val)
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%q is not a number of seconds", str)
	}
	return nil
}

func describeDataSet(set DataSet) string {
	tokens := make([]string, 0, 3)
	for _, k := range set.Policies() {
		tokens = append(tokens, k.Token())
	}
	return fmt.Sprintf("%.0f veh/h, %s", set.Volume, strings.Join(tokens, "/"))
}
