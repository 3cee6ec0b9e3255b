package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/declanbyrne/ryanairdump/dump"
)

var (
	cfgFile   string
	emailFlag string
	storePath string
)

var rootCmd = &cobra.Command{
	Use:   "ryanairdump",
	Short: "A tool to dump Ryanair account data",
	Long: `Ryanairdump is a CLI tool that talks to Ryanair's private mobile-app API.

It logs in once (handling the emailed device verification code), keeps the
session on disk, and dumps your profile, bookings and boarding passes.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a device session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump.Login(cmd.Context(), gatherConfig(cmd))
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the account profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump.Profile(cmd.Context(), gatherConfig(cmd))
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List active bookings and their flights",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump.Orders(cmd.Context(), gatherConfig(cmd))
	},
}

var boardingPassesCmd = &cobra.Command{
	Use:   "boardingpasses",
	Short: "Save boarding passes for all active bookings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump.BoardingPasses(cmd.Context(), gatherConfig(cmd))
	},
}

var bookingCmd = &cobra.Command{
	Use:   "booking <reference>",
	Short: "Show details for one booking reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump.BookingDetails(cmd.Context(), gatherConfig(cmd), args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the account periodically",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump.Watch(cmd.Context(), gatherConfig(cmd))
	},
}

// gatherConfig resolves configuration from flags and viper
func gatherConfig(cmd *cobra.Command) dump.Config {
	jsonMode, _ := cmd.Flags().GetBool("json")

	return dump.Config{
		Email:        getConfigValue(emailFlag, "email"),
		Password:     viper.GetString("password"),
		StorePath:    getConfigValue(storePath, "store_path"),
		SaveDir:      viper.GetString("save_dir"),
		JSONMode:     jsonMode,
		PollInterval: viper.GetDuration("poll_interval"),
	}
}

// getConfigValue returns the flag value if non-empty, otherwise returns the viper config value
func getConfigValue(flagValue, viperKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(viperKey)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Viper defaults
	viper.SetDefault("store_path", "~/.ryanairdump/sessions.json")
	viper.SetDefault("save_dir", "~/.ryanairdump/boardingpasses")
	viper.SetDefault("poll_interval", "5m")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ryanairdump/ryanairdump.yaml)")
	rootCmd.PersistentFlags().StringVar(&emailFlag, "email", "", "Ryanair account email")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "Path to session store (default: ~/.ryanairdump/sessions.json)")
	rootCmd.PersistentFlags().Bool("json", false, "Output structured JSON instead of interactive mode")

	boardingPassesCmd.Flags().String("save_dir", "", "Directory to save boarding passes (default: ~/.ryanairdump/boardingpasses)")
	watchCmd.Flags().Duration("poll_interval", 0, "How often to poll (default: 5m)")
	viper.BindPFlag("save_dir", boardingPassesCmd.Flags().Lookup("save_dir"))
	viper.BindPFlag("poll_interval", watchCmd.Flags().Lookup("poll_interval"))

	// Bind environment variables
	viper.BindEnv("email", "RYR_EMAIL")
	viper.BindEnv("password", "RYR_PASSWORD")
	viper.BindEnv("store_path", "RYR_STORE_PATH")
	viper.BindEnv("save_dir", "RYR_SAVE_DIR")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(boardingPassesCmd)
	rootCmd.AddCommand(bookingCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in ~/.ryanairdump/ directory with name "ryanairdump" (without extension).
		viper.AddConfigPath(filepath.Join(home, ".ryanairdump"))
		viper.SetConfigName("ryanairdump")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in silently (logging is via LOG_LEVEL env var)
	viper.ReadInConfig()
}
