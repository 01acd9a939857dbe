package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	runnerFlag string
)

var rootCmd = &cobra.Command{
	Use:           "paperlens",
	Short:         "Section, summarize and question research papers",
	Long:          "paperlens splits a PDF research paper into sections, summarizes them and answers questions about it with retrieval-augmented generation.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $PAPERLENS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&runnerFlag, "runner", "", "upload runner: local or temporal (default from config)")
	rootCmd.AddCommand(sectionsCmd, summarizeCmd, askCmd, statsCmd)
}

func main() {
	_ = godotenv.Load(".env")
	if err := rootCmd.Execute(); err != nil {
		log.Printf("paperlens: %v", err)
		os.Exit(1)
	}
}
