package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/docchat/internal/repository"
	"github.com/cloo-solutions/docchat/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke API keys",
	}
	cmd.AddCommand(APIKeyCreateCmd(), APIKeyListCmd(), APIKeyRevokeCmd())
	return cmd
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func newAuthService(pool *pgxpool.Pool) *service.AuthService {
	return service.NewAuthService(
		repository.NewAPIKeyRepository(pool),
		&service.DefaultUUIDGenerator{},
	)
}

func APIKeyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Create a new API key for a user",
		RunE:  runAPIKeyCreate,
	}
	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().StringP("name", "n", "", "API key name (required)")
	cmd.Flags().String("output", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	userID, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	format, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	authSvc := newAuthService(pool)
	plaintext, err := authSvc.CreateAPIKey(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("create API key: %w", err)
	}

	// Listing is newest-first, so the key just created leads.
	keys, err := authSvc.ListAPIKeys(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up created key: %w", err)
	}
	var keyID string
	if len(keys) > 0 {
		keyID = keys[0].ID
	}

	if format == "json" {
		printJSON(map[string]interface{}{
			"id":    keyID,
			"name":  name,
			"user":  userID,
			"token": plaintext,
		})
		return nil
	}

	fmt.Printf("API key created for user %s\n", userID)
	fmt.Printf("Key ID: %s\n", keyID)
	fmt.Printf("Key Name: %s\n", name)
	fmt.Printf("Token: %s\n", plaintext)
	fmt.Println("\n⚠️  Save this token now. You won't be able to see it again!")
	return nil
}

func APIKeyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys for a user",
		Long:  "List all API keys for a specific user",
		RunE:  runAPIKeyList,
	}
	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().String("output", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func runAPIKeyList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	userID, _ := cmd.Flags().GetString("user")
	format, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	keys, err := repository.NewAPIKeyRepository(pool).GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("list API keys: %w", err)
	}

	if format == "json" {
		rows := make([]map[string]interface{}, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, map[string]interface{}{
				"id":         key.ID,
				"name":       key.Name,
				"user_id":    key.UserID,
				"created_at": key.CreatedAt,
				"revoked_at": key.RevokedAt,
				"revoked":    key.IsRevoked(),
			})
		}
		printJSON(rows)
		return nil
	}

	if len(keys) == 0 {
		fmt.Printf("No API keys found for user %s\n", userID)
		return nil
	}
	fmt.Printf("API keys for user %s:\n", userID)
	for _, key := range keys {
		status := "active"
		if key.IsRevoked() {
			status = "revoked"
		}
		fmt.Printf("  %s: %s (%s, created: %s)\n",
			key.ID, key.Name, status, key.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func APIKeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Long:  "Revoke an API key by its ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runAPIKeyRevoke,
	}
	cmd.Flags().String("output", "text", "Output format (text or json)")
	return cmd
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	keyID := args[0]
	format, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.NewAPIKeyRepository(pool).Revoke(ctx, keyID); err != nil {
		return fmt.Errorf("revoke API key: %w", err)
	}

	if format == "json" {
		printJSON(map[string]interface{}{
			"id":      keyID,
			"revoked": true,
			"message": "API key revoked successfully",
		})
		return nil
	}
	fmt.Printf("API key %s revoked successfully\n", keyID)
	return nil
}
