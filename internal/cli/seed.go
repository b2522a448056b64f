package cli

import (
	"errors"
	"fmt"

	"github.com/martijn/jobboard/internal/core/service"
	"github.com/spf13/cobra"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data",
	Long: `Create two demo accounts (employer1 and worker1), a handful of jobs and
a couple of responses. Both accounts use the password "` + service.SeedPassword + `".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if seedReset {
			if err := services.DB.Reset(); err != nil {
				return fmt.Errorf("failed to reset database: %w", err)
			}
		}

		result, err := services.SeedService.Seed(cmd.Context())
		if errors.Is(err, service.ErrAlreadySeeded) {
			return fmt.Errorf("database already has users, run with --reset to start over")
		}
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d users, %d jobs and %d responses\n", result.Users, result.Jobs, result.Responses)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "drop all data before seeding")
	rootCmd.AddCommand(seedCmd)
}
