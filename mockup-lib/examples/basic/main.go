// ABOUTME: Basic example generating a mockup from a screenshot and markdown file
// ABOUTME: Demonstrates minimal configuration, progress reporting and standalone patching

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	mockup "mockups-app-api/mockup-lib"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: basic <screenshot.png> <page.md>")
	}

	screenshot, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal("Failed to read screenshot:", err)
	}
	markdown, err := os.ReadFile(os.Args[2])
	if err != nil {
		log.Fatal("Failed to read markdown:", err)
	}

	opts := []mockup.Option{mockup.WithQuietMode()}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		opts = append(opts, mockup.WithAPIKey(key))
	}

	client, err := mockup.NewClient(opts...)
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}
	defer client.Close()

	fmt.Println("=== Sections ===")
	for _, s := range client.Segment(string(markdown), 0) {
		fmt.Printf("%s %-20s %.2f\n", s.ID, s.Name, s.CharRatio)
	}

	fmt.Println("\n=== Generating ===")
	res, err := client.Generate(context.Background(), screenshot, string(markdown),
		mockup.WithProgress(func(phase, message string) {
			fmt.Printf("[%s] %s\n", phase, message)
		}),
	)
	if err != nil {
		log.Fatal("Generation failed:", err)
	}
	fmt.Printf("Reached %s with %d model calls in %s (truncated=%v)\n",
		res.PhaseReached, res.APICalls, res.Elapsed, res.Truncated)

	html, report, err := client.ApplyPatches(res.HTML, []mockup.Patch{
		{Type: "css_fix", Selector: "body", Value: "margin: 0"},
	})
	if err != nil {
		log.Fatal("Patching failed:", err)
	}
	fmt.Printf("Patches applied: %d, skipped: %d\n", report.Applied, report.Skipped)

	if err := os.WriteFile("mockup.html", []byte(html), 0o644); err != nil {
		log.Fatal("Failed to write mockup:", err)
	}
	fmt.Println("Wrote mockup.html")
}
