package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/intersection-simulations/pkg/config"
	"github.com/picogrid/intersection-simulations/pkg/logger"
	"github.com/picogrid/intersection-simulations/pkg/utils"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage run profiles",
	Long:  `Manage saved sets of run arguments, used with run --profile`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE:  listProfiles,
}

var profileAddCmd = &cobra.Command{
	Use:   "add [NAME [POLICY DATA_DIR STATIC_BUFFER INTERNAL_BUFFER EDGE_BUFFER]]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(6),
	RunE:  addProfile,
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove [NAME]",
	Short: "Remove a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  removeProfile,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)

	profileAddCmd.Flags().StringP("description", "d", "", "profile description")
	profileRemoveCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func listProfiles(cmd *cobra.Command, args []string) error {
	profiles, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles.Profiles) == 0 {
		fmt.Println("No profiles configured")
		return nil
	}

	table := logger.NewTable("NAME", "ARGUMENTS", "DESCRIPTION")
	for _, p := range profiles.Profiles {
		table.AddRow(p.Name, strings.Join(p.Args, " "), p.Description)
	}
	table.Print()

	return nil
}

func addProfile(cmd *cobra.Command, args []string) error {
	profiles, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	var profile config.Profile
	profile.Description, _ = cmd.Flags().GetString("description")

	if len(args) > 0 {
		profile.Name = args[0]
	} else {
		namePrompt := &survey.Input{
			Message: "Profile name:",
		}
		if err := survey.AskOne(namePrompt, &profile.Name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if _, exists := profiles.Find(profile.Name); exists {
		return fmt.Errorf("profile %s already exists", profile.Name)
	}

	if len(args) > 1 {
		profile.Args = args[1:]
	} else {
		sets, _ := utils.DiscoverDataSets(dataRoot())
		if profile.Args, err = utils.PromptForArgs(nil, sets); err != nil {
			return err
		}
	}

	if err := profiles.Add(profile); err != nil {
		return err
	}

	if err := config.SaveProfiles(profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	logger.Successf("Profile %s added", profile.Name)
	return nil
}

func removeProfile(cmd *cobra.Command, args []string) error {
	profiles, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles.Profiles) == 0 {
		fmt.Println("No profiles to remove")
		return nil
	}

	var selected string
	if len(args) > 0 {
		selected = args[0]
	} else {
		names := make([]string, len(profiles.Profiles))
		for i, p := range profiles.Profiles {
			names[i] = p.Name
		}

		prompt := &survey.Select{
			Message: "Select profile to remove:",
			Options: names,
		}
		if err := survey.AskOne(prompt, &selected); err != nil {
			return err
		}
	}

	if _, ok := profiles.Find(selected); !ok {
		return fmt.Errorf("profile %s not found", selected)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		var confirm bool
		confirmPrompt := &survey.Confirm{
			Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
			Default: false,
		}
		if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
			return err
		}

		if !confirm {
			fmt.Println("Removal cancelled")
			return nil
		}
	}

	profiles.Remove(selected)

	if err := config.SaveProfiles(profiles); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	logger.Successf("Profile %s removed", selected)
	return nil
}
