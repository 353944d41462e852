package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// DocumentResponse mirrors a document in API responses.
type DocumentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	FileURL   string `json:"file_url"`
	CreatedAt string `json:"created_at"`
}

// ListDocumentsResponse mirrors the /documents list response.
type ListDocumentsResponse struct {
	Items   []DocumentResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage ingested documents",
		Long:  "List, inspect, and delete ingested documents",
	}

	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsGetCmd())
	cmd.AddCommand(docsDeleteCmd())

	return cmd
}

func docsListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runDocsList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	path := "/documents"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var list ListDocumentsResponse
	if err := decodeData(resp, &list); err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(list.Items) == 0 {
		fmt.Println("No documents found")
		return nil
	}

	for _, doc := range list.Items {
		fmt.Printf("  %s: %s (ingested: %s)\n", doc.ID, doc.FileName, doc.CreatedAt)
	}
	if list.HasMore && list.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", list.Cursor)
	}

	return nil
}

func docsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsGet(cmd, args[0], outputJSON)
		},
	}
}

func runDocsGet(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/documents/" + id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	var doc DocumentResponse
	if err := decodeData(resp, &doc); err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("ID:       %s\n", doc.ID)
		fmt.Printf("Name:     %s\n", doc.FileName)
		fmt.Printf("Source:   %s\n", doc.FileURL)
		fmt.Printf("Ingested: %s\n", doc.CreatedAt)
	}

	return nil
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document and its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsDelete(cmd, args[0], outputJSON)
		},
	}
}

func runDocsDelete(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete("/documents/" + id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]interface{}{
			"id":      id,
			"deleted": true,
		}, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Deleted document %s\n", id)
	}

	return nil
}
