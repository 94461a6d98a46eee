// file: cmd/root.go
// version: 1.4.0
// guid: 7d2e4f90-1a8b-4c36-9e5d-0b7f3a2c8d61

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mhagen/dealerfinder/internal/config"
	"github.com/mhagen/dealerfinder/internal/database"
	"github.com/mhagen/dealerfinder/internal/seed"
	"github.com/mhagen/dealerfinder/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var databasePath string
var databaseType string
var enableAuth bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealerfinder",
	Short: "Dealer directory with fuzzy search",
	Long: `Dealerfinder serves a searchable directory of car dealerships with
user reviews. Search is typo-tolerant: queries are matched against dealer
names, cities, states, postal codes and brands by edit distance, and bare
5-digit ZIP queries fall back to exact postal lookup.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the HTTP server exposing the dealer directory, search and review API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.StoreType, config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer database.CloseStore()

		fmt.Printf("Using store: %s", config.AppConfig.StoreType)
		if config.AppConfig.StoreType == "sqlite" {
			fmt.Printf(" (%s)", config.AppConfig.DatabasePath)
		}
		fmt.Println()

		srv := server.NewServer()
		cfg := server.GetDefaultServerConfig()

		// Override with command line flags if provided
		if port := cmd.Flag("port").Value.String(); port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); host != "" {
			cfg.Host = host
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with dealer data",
	Long: `Seed the configured store with dealers, either generated synthetically
or loaded from a YAML fixture file. Near-duplicate generated names are
skipped so the seeded directory stays useful for search testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.StoreType, config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer database.CloseStore()

		if config.AppConfig.StoreType == "memory" {
			fmt.Println("Warning: seeding the memory store; data is lost when this command exits.")
			fmt.Println("Use --db-type sqlite --db dealers.db to seed a persistent store.")
		}

		count, _ := cmd.Flags().GetInt("count")
		withReviews, _ := cmd.Flags().GetBool("with-reviews")
		fixture, _ := cmd.Flags().GetString("fixture")
		rngSeed, _ := cmd.Flags().GetInt64("seed")
		reset, _ := cmd.Flags().GetBool("reset")

		created, err := seed.Run(database.GlobalStore, seed.Options{
			Count:       count,
			WithReviews: withReviews,
			FixturePath: fixture,
			Seed:        rngSeed,
			Reset:       reset,
		})
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}

		fmt.Printf("Seeded %d dealers\n", created)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dealerfinder.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "dealers.db", "path to the SQLite database file")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "memory", "store type: memory (default) or sqlite")
	rootCmd.PersistentFlags().BoolVar(&enableAuth, "auth", true, "require a session for mutating endpoints")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("store_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("enable_auth", rootCmd.PersistentFlags().Lookup("auth"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)

	// Add serve command specific flags
	serveCmd.Flags().String("port", "8080", "port to run the web server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the web server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
	serveCmd.Flags().Int("threshold", 4, "max edit distance for a search hit")
	serveCmd.Flags().Int("suggestions", 3, "number of typeahead suggestions returned")
	viper.BindPFlag("search_threshold", serveCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("suggestion_limit", serveCmd.Flags().Lookup("suggestions"))

	// Seed command flags
	seedCmd.Flags().Int("count", 50, "number of synthetic dealers to generate")
	seedCmd.Flags().Bool("with-reviews", false, "attach a few reviews to each dealer")
	seedCmd.Flags().String("fixture", "", "YAML fixture file to load instead of generating")
	seedCmd.Flags().Int64("seed", 0, "RNG seed for reproducible data (0 = random)")
	seedCmd.Flags().Bool("reset", false, "wipe all existing data before seeding")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dealerfinder")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Ensure the database directory exists for the sqlite backend
	if databaseType == "sqlite" && databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Printf("Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}
