package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// IngestRequest mirrors the /ingest request body.
type IngestRequest struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

// IngestResponse mirrors the /ingest response. This endpoint responds
// outside the data envelope.
type IngestResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func IngestCmd() *cobra.Command {
	var (
		fileURL  string
		fileName string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a PDF document",
		Long: `Fetch a PDF from a URL, extract and index its text, and return the
document ID to chat against.

Examples:
  docchat ingest --url https://example.com/report.pdf --name report.pdf
  docchat ingest --url s3://docchat-uploads/uploads/abc/report.pdf --name report.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, fileURL, fileName, outputJSON)
		},
	}

	cmd.Flags().StringVar(&fileURL, "url", "", "URL of the PDF to ingest (required)")
	cmd.Flags().StringVar(&fileName, "name", "", "Display name for the document (required)")
	cmd.MarkFlagRequired("url")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runIngest(cmd *cobra.Command, fileURL, fileName string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, status, err := api.PostRaw("/ingest", IngestRequest{
		FileURL:  fileURL,
		FileName: fileName,
	})
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}
	if status != http.StatusOK {
		return &APIError{StatusCode: status, Message: string(body)}
	}

	var resp IngestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Ingested %s\n", fileName)
		fmt.Printf("Document ID: %s\n", resp.ID)
		fmt.Printf("\nAsk questions with: docchat ask %s \"your question\"\n", resp.ID)
	}

	return nil
}
