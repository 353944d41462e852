package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func InitCmd() *cobra.Command {
	var (
		apiKey string
		apiURL string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save API credentials",
		Long: `Verify API credentials and save them to the global config file.

The key is checked against the server before saving, so a typo fails
here rather than on the first real command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(apiKey, apiURL)
		},
	}

	cmd.Flags().StringVarP(&apiKey, "key", "k", "", "API key (required)")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API base URL")
	cmd.MarkFlagRequired("key")

	return cmd
}

func runInit(apiKey, apiURL string) error {
	if !IsValidAPIKey(apiKey) {
		return fmt.Errorf("invalid API key format (expected 'dcc_<64 hex chars>')")
	}

	api, err := NewAPIClientWithConfig(apiKey, apiURL)
	if err != nil {
		return err
	}

	// Any authenticated endpoint verifies the key.
	if _, err := api.Get("/keys"); err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIKey: apiKey, APIURL: apiURL}); err != nil {
		return err
	}

	configPath, _ := GetConfigPath()
	fmt.Printf("Credentials verified and saved to %s\n", configPath)
	return nil
}

func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove saved API credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return err
			}
			fmt.Println("Credentials removed")
			return nil
		},
	}
}

// decodeData unmarshals the data envelope of an API response into out.
func decodeData(resp *APIResponse, out interface{}) error {
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
