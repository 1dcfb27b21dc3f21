package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// errdigest prints the AI debugging digest and the running error
// summary from an error log directory without touching its files.
func main() {
	var (
		root   = flag.String("root", ".", "Error log root directory")
		action = flag.String("action", "digest", "Action to perform: digest, summary")
	)
	flag.Parse()

	if env := os.Getenv("ERRORLOG_ROOT"); env != "" && *root == "." {
		*root = env
	}

	switch *action {
	case "digest":
		printFile(digestPath(*root))
	case "summary":
		printSummary(summaryPath(*root))
	default:
		fmt.Println("Usage: errdigest -action=<digest|summary> [-root=<dir>]")
		flag.PrintDefaults()
		os.Exit(1)
	}
}

// The logger keeps both files under errors/ inside its root.
func digestPath(root string) string {
	return filepath.Join(root, "errors", "Auto-Error_AI-Context.txt")
}

func summaryPath(root string) string {
	return filepath.Join(root, "errors", "error_summary.json")
}

func printFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("No digest found at %s: %v", path, err)
	}
	fmt.Print(string(data))
}

func printSummary(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("No summary found at %s: %v", path, err)
	}

	// Re-indent so hand-edited or compact files still print readably
	var summary map[string]interface{}
	if err := json.Unmarshal(data, &summary); err != nil {
		log.Fatalf("Malformed summary at %s: %v", path, err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render summary: %v", err)
	}
	fmt.Println(string(out))
}
