package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/docchat/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docchat",
		Short: "Docchat CLI - Chat with your PDF documents",
		Long: `Docchat CLI ingests PDF documents and answers questions about them.

Environment variables:
  DOCCHAT_API_KEY   API key for authentication (required)
  DOCCHAT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	root.PersistentFlags().Bool("output", false, "Output as JSON")
	root.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	root.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")

	root.AddCommand(
		client.InitCmd(),
		client.LogoutCmd(),
		client.IngestCmd(),
		client.AskCmd(),
		client.DocsCmd(),
		client.UploadCmd(),
		client.KeysCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
