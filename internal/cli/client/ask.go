package client

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest mirrors the /chat request body.
type ChatRequest struct {
	Messages []chatMessage `json:"messages"`
	ChatID   string        `json:"chatId"`
}

func AskCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "ask <document-id> [question]",
		Short: "Ask a question about an ingested document",
		Long: `Ask a question about an ingested document. The answer is grounded in
the document's indexed text.

Examples:
  docchat ask 3f2a... "What is the refund policy?"
  docchat ask 3f2a... --interactive`,
		Args: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if len(args) != 1 {
					return fmt.Errorf("requires exactly 1 argument (document-id) with --interactive")
				}
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("requires exactly 2 arguments (document-id and question)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if interactive {
				return runAskInteractive(api, args[0])
			}
			return runAsk(api, args[0], args[1])
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Start an interactive question loop")

	return cmd
}

func runAsk(api *APIClient, documentID, question string) error {
	answer, err := ask(api, documentID, []chatMessage{{Role: "user", Content: question}})
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// runAskInteractive loops reading questions from stdin. The conversation so
// far is sent with every question so the server always sees the full history.
func runAskInteractive(api *APIClient, documentID string) error {
	fmt.Printf("Asking about document %s. Empty line or Ctrl-D to exit.\n", documentID)

	var history []chatMessage
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		history = append(history, chatMessage{Role: "user", Content: question})
		answer, err := ask(api, documentID, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			history = history[:len(history)-1]
			continue
		}

		fmt.Println(answer)
		history = append(history, chatMessage{Role: "assistant", Content: answer})
	}

	return scanner.Err()
}

// ask sends the conversation and returns the plain-text answer.
func ask(api *APIClient, documentID string, messages []chatMessage) (string, error) {
	body, status, err := api.PostRaw("/chat", ChatRequest{
		Messages: messages,
		ChatID:   documentID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to ask question: %w", err)
	}
	if status != http.StatusOK {
		return "", &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}

	return string(body), nil
}
