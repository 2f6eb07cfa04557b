package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/config"
	"github.com/example/cadastre/internal/core/actor"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the default acting user",
	Long: `The profile is stored in ~/.cadastre/profile.json and is used
whenever --actor or --role are not given.`,
}

var profileSetCmd = &cobra.Command{
	Use:   "set [actor-id] [role]",
	Short: "Set the default actor and role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := actor.ParseRole(args[1])
		if err != nil {
			return err
		}
		p := &config.Profile{ActorID: args[0], Role: string(role)}
		if err := config.SaveProfile(profileDir(), p); err != nil {
			return err
		}
		fmt.Printf("✓ Acting as %s (%s)\n", p.ActorID, p.Role)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the acting user",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, role := resolveActor(actorFlag, roleFlag, profileDir())
		if id == "" {
			fmt.Println("No actor set. Use 'cadastre profile set' or --actor/--role.")
			return nil
		}
		fmt.Printf("%s (%s)\n", id, role)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
}

// ProfileCmd returns the profile command
func ProfileCmd() *cobra.Command {
	return profileCmd
}
