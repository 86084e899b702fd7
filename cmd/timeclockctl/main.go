package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/arnavshah/timeclock-api/pkg/auth"
	"github.com/arnavshah/timeclock-api/pkg/config"
	"github.com/arnavshah/timeclock-api/pkg/database"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/report"
	"github.com/arnavshah/timeclock-api/pkg/shifttime"
)

var rootCmd = &cobra.Command{
	Use:   "timeclockctl",
	Short: "Maintenance commands for the timeclock API",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, db := mustOpen()
		if err := database.Migrate(db); err != nil {
			fatal(err)
		}
		cfg.Logger.Println("Migration complete")
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		employeeID, _ := cmd.Flags().GetString("employee-id")

		_, db := mustOpen()
		if err := database.Migrate(db); err != nil {
			fatal(err)
		}
		user, err := auth.CreateAdmin(db, username, password, employeeID)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Admin %s ready (id %d, employee %s)\n", user.Username, user.ID, user.EmployeeID)
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge-schedules",
	Short: "Delete schedules older than the retention period",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, db := mustOpen()
		n, err := database.PurgeExpiredSchedules(cmd.Context(), db, cfg.ScheduleTTL, time.Now())
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Purged %d schedules\n", n)
	},
}

var timesheetCmd = &cobra.Command{
	Use:   "timesheet <username> <year> <month>",
	Short: "Write a worker's monthly timesheet as CSV to stdout",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		var year, month int
		if _, err := fmt.Sscanf(args[1]+" "+args[2], "%d %d", &year, &month); err != nil || month < 1 || month > 12 {
			fatal(fmt.Errorf("invalid period %s-%s", args[1], args[2]))
		}

		cfg, db := mustOpen()
		var user models.User
		if err := db.Where("username = ?", args[0]).First(&user).Error; err != nil {
			fatal(fmt.Errorf("user %s: %w", args[0], err))
		}

		m, err := monthly(cmd.Context(), db, cfg, &user, year, month)
		if err != nil {
			fatal(err)
		}
		if err := report.WriteCSV(os.Stdout, m); err != nil {
			fatal(err)
		}
	},
}

var hoursCmd = &cobra.Command{
	Use:   "hours <start> <end>",
	Short: "Compute worked hours for a shift, e.g. hours 22:00 06:00 --break 30",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		breakMinutes, _ := cmd.Flags().GetInt("break")

		start, err := shifttime.ParseClock(args[0])
		if err != nil {
			fatal(err)
		}
		end, err := shifttime.ParseClock(args[1])
		if err != nil {
			fatal(err)
		}
		fmt.Println(formatHours(shifttime.Hours(start, end, breakMinutes)))
	},
}

func init() {
	createAdminCmd.Flags().String("username", "admin", "Admin username")
	createAdminCmd.Flags().String("password", "", "Admin password")
	createAdminCmd.Flags().String("employee-id", auth.AdminEmployeeID, "Employee id for a new account")
	_ = createAdminCmd.MarkFlagRequired("password")

	hoursCmd.Flags().Int("break", 0, "Unpaid break in minutes")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(timesheetCmd)
	rootCmd.AddCommand(hoursCmd)
}

func mustOpen() (*config.Config, *gorm.DB) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	models.ClockLocation = cfg.Location

	db, err := database.Open(cfg)
	if err != nil {
		fatal(err)
	}
	return cfg, db
}

func monthly(ctx context.Context, db *gorm.DB, cfg *config.Config, user *models.User, year, month int) (*report.Monthly, error) {
	sqlDB, err := database.SQL(db)
	if err != nil {
		return nil, err
	}
	rows, err := report.NewRepo(sqlDB, database.DriverName(db)).MonthlyEntries(ctx, user.ID, year, month)
	if err != nil {
		return nil, err
	}
	return report.BuildMonthly(user, year, month, rows, cfg.OvertimeThreshold, cfg.Location, time.Now()), nil
}

// formatHours prints hours with one decimal, like the timesheets
func formatHours(h float64) string {
	return fmt.Sprintf("%.1f", h)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
