package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/utils"
)

var (
	seedUsername string
	seedPassword string
	seedRole     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create initial data",
}

var seedUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Create a user, or reset the password and role of an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		created, err := services.SeedUser(cmd.Context(), store, seedUsername, seedPassword, seedRole)
		if err != nil {
			return err
		}
		if created {
			cmd.Printf("User %s created\n", seedUsername)
		} else {
			cmd.Printf("User %s updated\n", seedUsername)
		}
		return nil
	},
}

var seedRoomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Create the default rooms, including the OTHER room",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		n, err := services.SeedRooms(cmd.Context(), store)
		if err != nil {
			return err
		}
		utils.InfoLogger.Printf("Seeded %d rooms", n)
		cmd.Printf("%d rooms created\n", n)
		return nil
	},
}

func init() {
	seedUserCmd.Flags().StringVarP(&seedUsername, "username", "u", "", "username")
	seedUserCmd.Flags().StringVarP(&seedPassword, "password", "p", "", "password")
	seedUserCmd.Flags().StringVarP(&seedRole, "role", "r", models.RoleAdmin, "role (admin or staff)")
	_ = seedUserCmd.MarkFlagRequired("username")
	_ = seedUserCmd.MarkFlagRequired("password")

	seedCmd.AddCommand(seedUserCmd, seedRoomsCmd)
}
