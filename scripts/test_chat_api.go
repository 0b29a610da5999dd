package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout; the stream endpoint is long lived
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// streamChat posts a message and prints the SSE events as they arrive.
// Returns the session id announced by the server.
func streamChat(sessionID, message string) string {
	payload := map[string]interface{}{"message": message}
	if sessionID != "" {
		payload["session_id"] = sessionID
	}
	jsonBody, _ := json.Marshal(payload)

	resp, err := http.Post(baseURL+"/chat/v1/stream", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		color.Red("Stream request failed: %v", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var announced string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			color.Cyan(line)
			continue
		}
		if strings.HasPrefix(line, "data: ") {
			fmt.Println(line)
			if announced == "" {
				var data struct {
					SessionId string `json:"session_id"`
				}
				if err := json.Unmarshal([]byte(line[6:]), &data); err == nil && data.SessionId != "" {
					announced = data.SessionId
				}
			}
		}
	}
	return announced
}

func main() {
	color.Yellow("=== 1. Stream a first message (new session) ===")
	sessionID := streamChat("", "How do solar panels work?")
	if sessionID == "" {
		color.Red("No session id announced")
		os.Exit(1)
	}
	color.Green("Session: %s", sessionID)

	color.Yellow("=== 2. Continue the session ===")
	streamChat(sessionID, "And how efficient are they?")

	color.Yellow("=== 3. List sessions ===")
	_, body, err := sendRequest("GET", "/chat/v1/sessions", nil)
	if err != nil {
		color.Red("List failed: %v", err)
		os.Exit(1)
	}
	var listRes map[string]interface{}
	json.Unmarshal(body, &listRes)
	prettyPrint(listRes)

	color.Yellow("=== 4. Fetch title (may still be generating) ===")
	_, body, _ = sendRequest("GET", "/chat/v1/sessions/"+sessionID+"/title", nil)
	var titleRes map[string]interface{}
	json.Unmarshal(body, &titleRes)
	prettyPrint(titleRes)

	color.Yellow("=== 5. Fetch history ===")
	_, body, _ = sendRequest("GET", "/chat/v1/sessions/"+sessionID+"/history", nil)
	var histRes map[string]interface{}
	json.Unmarshal(body, &histRes)
	prettyPrint(histRes)

	color.Yellow("=== 6. Delete session ===")
	resp, _, _ := sendRequest("DELETE", "/chat/v1/sessions/"+sessionID, nil)
	if resp.StatusCode == http.StatusOK {
		color.Green("Deleted.")
	} else {
		color.Red("Delete returned %d", resp.StatusCode)
	}
}
