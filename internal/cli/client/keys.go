package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// APIKeyResponse mirrors an API key in /keys responses.
type APIKeyResponse struct {
	ID        string `json:"id,omitempty"`
	Token     string `json:"token,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	Revoked   bool   `json:"revoked"`
}

func KeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage your API keys",
		Long:  "Create, list, and revoke API keys for your account",
	}

	cmd.AddCommand(keysCreateCmd())
	cmd.AddCommand(keysListCmd())
	cmd.AddCommand(keysRevokeCmd())

	return cmd
}

func keysCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runKeysCreate(cmd, name, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "API key name (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runKeysCreate(cmd *cobra.Command, name string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/keys", map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	var key APIKeyResponse
	if err := decodeData(resp, &key); err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(key, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Key Name: %s\n", key.Name)
		fmt.Printf("Token: %s\n", key.Token)
		fmt.Println("\n⚠️  Save this token now. You won't be able to see it again!")
	}

	return nil
}

func keysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runKeysList(cmd, outputJSON)
		},
	}
}

func runKeysList(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/keys")
	if err != nil {
		return fmt.Errorf("failed to list API keys: %w", err)
	}

	var keys []APIKeyResponse
	if err := decodeData(resp, &keys); err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(keys, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(keys) == 0 {
		fmt.Println("No API keys found")
		return nil
	}

	for _, key := range keys {
		status := "active"
		if key.Revoked {
			status = "revoked"
		}
		fmt.Printf("  %s: %s (%s, created: %s)\n", key.ID, key.Name, status, key.CreatedAt)
	}

	return nil
}

func keysRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runKeysRevoke(cmd, args[0], outputJSON)
		},
	}
}

func runKeysRevoke(cmd *cobra.Command, keyID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete("/keys/" + keyID); err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]interface{}{
			"id":      keyID,
			"revoked": true,
		}, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("API key %s revoked\n", keyID)
	}

	return nil
}
