package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const (
	baseURL = "http://localhost:3000/api"

	feeSchedule = `# Account Fee Schedule

Standard checking accounts carry no monthly fee when the balance stays
above the minimum required balance.

| account | monthly fee | minimum balance |
| checking | $0 | $500 |
| savings | $5 | $300 |
| premium | $25 | $10,000 |

Wire transfers submitted before 2pm local time settle the same day.`
)

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

	client := &http.Client{} // No timeout, LLM answers can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var envelope map[string]interface{}
	json.Unmarshal(body, &envelope)
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		return data
	}
	return nil
}

func main() {
	color.Cyan("🚀 Starting Assistant API Smoke Test\n")

	// 1. Upload a document with a fee table
	color.Yellow("\n1. Upload Fee Schedule Document")
	uploadReq := map[string]interface{}{
		"name":    "fee_schedule.md",
		"mime":    "text/markdown",
		"content": feeSchedule,
	}
	resp, body, err := sendRequest("POST", "/documents/v1", uploadReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var documentID string
	if data := dataField(body); data != nil {
		documentID, _ = data["id"].(string)
		fmt.Printf("Document ID: %s\n", documentID)
	}
	if documentID == "" {
		color.Red("No document ID returned")
		os.Exit(1)
	}

	// 2. Poll until the background consumer finishes indexing
	color.Yellow("\n2. Wait For Indexing")
	indexed := false
	for i := 0; i < 30; i++ {
		time.Sleep(2 * time.Second)
		_, body, err = sendRequest("GET", "/documents/v1/"+documentID, nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		data := dataField(body)
		status, _ := data["status"].(string)
		fmt.Printf("  attempt %d: status=%s\n", i+1, status)
		if status == "indexed" {
			indexed = true
			fmt.Printf("  chunk_count: %v\n", data["chunk_count"])
			break
		}
		if status == "failed" {
			color.Red("Indexing failed")
			os.Exit(1)
		}
	}
	if !indexed {
		color.Red("Timed out waiting for indexing")
		os.Exit(1)
	}

	// 3. Knowledge base stats
	color.Yellow("\n3. Knowledge Base Stats")
	resp, body, err = sendRequest("GET", "/documents/v1/stats", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(dataField(body))

	// 4. Create a chat session
	color.Yellow("\n4. Create Chat Session")
	resp, body, err = sendRequest("POST", "/assistant/v1/sessions", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var sessionID string
	if data := dataField(body); data != nil {
		sessionID, _ = data["id"].(string)
		fmt.Printf("Session ID: %s\n", sessionID)
	}
	if sessionID == "" {
		color.Red("No session ID returned")
		os.Exit(1)
	}

	// 5. Ask a table question
	color.Yellow("\n5. Ask: Premium Account Fee (Table Lookup)")
	askReq := map[string]interface{}{
		"session_id": sessionID,
		"query":      "What is the monthly fee for a premium account?",
	}
	resp, body, err = sendRequest("POST", "/assistant/v1/ask", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Answer: %s\n", data["answer"])
			fmt.Printf("Confidence: %v, Tier: %v, Grounded: %v\n",
				data["confidence"], data["tier_used"], data["grounded"])
			if sources, ok := data["sources"].([]interface{}); ok {
				fmt.Printf("Sources: %d\n", len(sources))
			}
		}
	}

	// 6. Follow-up relying on conversational memory
	color.Yellow("\n6. Ask Follow-Up: 'and for savings?'")
	askReq["query"] = "And for a savings account?"
	resp, body, err = sendRequest("POST", "/assistant/v1/ask", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Answer: %s\n", data["answer"])
		}
	}

	// 7. Out-of-scope question should return the fallback, not an invented answer
	color.Yellow("\n7. Ask Out-Of-Scope Question")
	askReq["query"] = "What is the weather forecast for Jakarta tomorrow?"
	resp, body, err = sendRequest("POST", "/assistant/v1/ask", askReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		if data := dataField(body); data != nil {
			fmt.Printf("Answer: %s\n", data["answer"])
			fmt.Printf("Grounded: %v (expect false)\n", data["grounded"])
		}
	}

	// 8. History should hold all turns in order
	color.Yellow("\n8. Session History")
	resp, body, err = sendRequest("GET", "/assistant/v1/sessions/"+sessionID+"/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var envelope map[string]interface{}
		json.Unmarshal(body, &envelope)
		if turns, ok := envelope["data"].([]interface{}); ok {
			fmt.Printf("Turns: %d (expect 6)\n", len(turns))
		}
	}

	// 9. Cleanup
	color.Yellow("\n9. Cleanup: Delete Session and Document")
	resp, _, err = sendRequest("DELETE", "/assistant/v1/sessions/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Delete session: %s", resp.Status)
	}
	resp, _, err = sendRequest("DELETE", "/documents/v1/"+documentID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Delete document: %s", resp.Status)
	}

	color.Cyan("\n✅ Test Sequence Complete")
}
