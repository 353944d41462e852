package client

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// InitUploadRequest mirrors the /uploads/init request body.
type InitUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// InitUploadResponse mirrors the /uploads/init response.
type InitUploadResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

const pdfContentType = "application/pdf"

func UploadCmd() *cobra.Command {
	var ingest bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a local PDF to object storage",
		Long: `Upload a local PDF to the server's object storage via a presigned URL.

With --ingest the uploaded file is ingested immediately and the document
ID is printed.

Examples:
  docchat upload report.pdf
  docchat upload report.pdf --ingest`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], ingest, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&ingest, "ingest", false, "Ingest the file after uploading")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath string, ingest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	fileName := filepath.Base(filePath)

	resp, err := api.Post("/uploads/init", InitUploadRequest{
		FileName:    fileName,
		ContentType: pdfContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize upload: %w", err)
	}

	var upload InitUploadResponse
	if err := decodeData(resp, &upload); err != nil {
		return err
	}

	if err := api.UploadFile(upload.UploadURL, filePath, pdfContentType); err != nil {
		return err
	}

	if !ingest {
		if outputJSON {
			output, _ := json.MarshalIndent(upload, "", "  ")
			fmt.Println(string(output))
		} else {
			fmt.Printf("Uploaded %s\n", fileName)
			fmt.Printf("File URL: %s\n", upload.FileURL)
			fmt.Printf("\nIngest with: docchat ingest --url %s --name %s\n", upload.FileURL, fileName)
		}
		return nil
	}

	return runIngest(cmd, upload.FileURL, fileName, outputJSON)
}
