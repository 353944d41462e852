package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/docchat/internal/cli/admin"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docchatd",
		Short: "Docchat daemon and admin CLI",
		Long:  "Docchat daemon for running the API server and managing API keys",
	}
	root.AddCommand(admin.ServeCmd(), admin.APIKeyCmd())
	return root
}

func main() {
	// Bare invocation starts the server, matching container entrypoints.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
