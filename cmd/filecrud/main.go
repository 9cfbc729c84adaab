package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Yashchauhan008/file-crud/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filecrud",
	Short:   "Learning resource upload server",
	Long: `filecrud stores uploaded zip, docx and pptx files in a blob store
and keeps their metadata (topic, title, description) in a database,
exposing create, list, get and delete over a JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var files []string
		if configFile != "" {
			files = append(files, configFile)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env", "", "runtime mode: development, production (env: FILECRUD_SERVER_ENV, APP_ENV)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: mongo, postgres, sqlite (default: mongo, env: FILECRUD_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: FILECRUD_DATABASE_DSN, MONGODB_URI)")
	rootCmd.PersistentFlags().String("storage-type", "", "blob store: filesystem, minio, s3 (default: filesystem, env: FILECRUD_STORAGE_TYPE)")
	rootCmd.PersistentFlags().String("storage-path", "", "filesystem storage directory (default: ./data, env: FILECRUD_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
