// Command relayctl sends one conversational turn to a relayd server and
// renders the streamed reply on the terminal. The session id is persisted
// to a state file between invocations so follow-up turns continue the same
// conversation.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/tailored-agentic-units/relay/wire"
)

func main() {
	var (
		serverURL = flag.String("server", "http://127.0.0.1:8080", "Base URL of the relayd server")
		message   = flag.String("message", "", "User message to send (required unless -reset)")
		stateFile = flag.String("state-file", "", "File persisting the session id between invocations")
		reset     = flag.Bool("reset", false, "Delete the current session and clear the state file")
	)
	flag.Parse()

	sessionID := loadSessionID(*stateFile)

	if *reset {
		if sessionID == "" {
			log.Fatalln("No session to reset")
		}
		if err := deleteSession(*serverURL, sessionID); err != nil {
			log.Fatalf("Failed to delete session: %v", err)
		}
		if *stateFile != "" {
			os.Remove(*stateFile)
		}
		fmt.Println("Session deleted:", sessionID)
		return
	}

	if *message == "" {
		fmt.Fprintln(os.Stderr, "Usage: relayctl -message <text> [-server <url>] [-state-file <file>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	consumer := wire.NewConsumer(wire.WithTextWriter(os.Stdout))
	consumer.SetSessionID(sessionID)
	consumer.StartTurn(*message)

	if err := runTurn(*serverURL, *message, sessionID, consumer); err != nil {
		log.Fatalf("Turn failed: %v", err)
	}
	fmt.Println()

	if *stateFile != "" && consumer.SessionID() != "" {
		if err := os.WriteFile(*stateFile, []byte(consumer.SessionID()), 0644); err != nil {
			log.Fatalf("Failed to persist session id: %v", err)
		}
	}
}

func runTurn(serverURL, message, sessionID string, consumer *wire.Consumer) error {
	body, err := json.Marshal(map[string]string{
		"message":    message,
		"session_id": sessionID,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(serverURL+"/api/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	return consumer.Consume(resp.Body)
}

func deleteSession(serverURL, sessionID string) error {
	body, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return err
	}

	resp, err := http.Post(serverURL+"/api/thread", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return nil
}

func loadSessionID(stateFile string) string {
	if stateFile == "" {
		return ""
	}
	data, err := os.ReadFile(stateFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
