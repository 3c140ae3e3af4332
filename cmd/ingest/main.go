package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Bulk loader for the knowledge base. Walks a directory, uploads every
// .txt/.md/.csv file through the documents API and lets the background
// consumer chunk and embed them.

var mimeByExt = map[string]string{
	".txt": "text/plain",
	".md":  "text/markdown",
	".csv": "text/csv",
}

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return strings.TrimSuffix(v, "/")
	}
	return "http://localhost:3000/api"
}

func uploadDocument(name, mime, content string) (string, error) {
	payload := map[string]interface{}{
		"name":    name,
		"mime":    mime,
		"content": content,
	}
	jsonBody, _ := json.Marshal(payload)

	resp, err := http.Post(baseURL()+"/documents/v1", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %s: %s", resp.Status, string(respBody))
	}

	var envelope struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", err
	}
	return envelope.Data.Id, nil
}

func main() {
	dir := "./corpus"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	color.Cyan("🚀 Loading documents from %s\n", dir)

	var uploaded, skipped, failed int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		mime, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]
		if !ok {
			skipped++
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			color.Red("Failed to read %s: %v", path, err)
			failed++
			return nil
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			color.Yellow("Skipping empty file %s", path)
			skipped++
			return nil
		}

		id, err := uploadDocument(filepath.Base(path), mime, string(data))
		if err != nil {
			color.Red("Failed to upload %s: %v", path, err)
			failed++
			return nil
		}

		color.Green("Uploaded %s (id: %s)", filepath.Base(path), id)
		uploaded++
		return nil
	})
	if err != nil {
		color.Red("Walk failed: %v", err)
		os.Exit(1)
	}

	fmt.Println()
	color.Cyan("Done: %d uploaded, %d skipped, %d failed", uploaded, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
