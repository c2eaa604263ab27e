package claudecli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"doccat/internal/ports"
)

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// Proposer implements ports.EntryProposer by running the claude CLI
type Proposer struct {
	model  string
	binary string
}

// Ensure Proposer implements ports.EntryProposer
var _ ports.EntryProposer = (*Proposer)(nil)

// Option configures the Proposer
type Option func(*Proposer)

// WithModel sets the Claude model to use
func WithModel(model string) Option {
	return func(p *Proposer) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBinary overrides the claude executable
func WithBinary(path string) Option {
	return func(p *Proposer) {
		p.binary = path
	}
}

// NewProposer creates a new Claude CLI entry proposer
func NewProposer(opts ...Option) *Proposer {
	p := &Proposer{
		model:  "haiku", // Default to haiku for speed
		binary: "claude",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// claudeResponse represents the JSON output from claude CLI
type claudeResponse struct {
	Type         string  `json:"type"`
	Subtype      string  `json:"subtype"`
	DurationMS   int     `json:"duration_ms"`
	IsError      bool    `json:"is_error"`
	NumTurns     int     `json:"num_turns"`
	Result       string  `json:"result"`
	SessionID    string  `json:"session_id"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// proposalJSON represents the expected JSON format from Claude's response
type proposalJSON struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Reasoning   string `json:"reasoning"`
}

// ProposeEntries asks Claude for a title, description and category for
// each new file
func (p *Proposer) ProposeEntries(ctx context.Context, files []ports.FileInfo, categories []string) ([]ports.EntryProposal, error) {
	if len(files) == 0 {
		return nil, nil
	}
	prompt := buildPrompt(files, categories)

	args := []string{
		"-p", prompt,
		"--output-format", "json",
		"--model", p.model,
	}

	cmd := exec.CommandContext(ctx, p.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("claude CLI error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("claude CLI error: %w", err)
	}

	var response claudeResponse
	if err := json.Unmarshal(output, &response); err != nil {
		return nil, fmt.Errorf("failed to parse claude response: %w", err)
	}
	if response.IsError {
		return nil, fmt.Errorf("claude returned an error: %s", response.Result)
	}

	return parseProposals(response.Result, files)
}

func buildPrompt(files []ports.FileInfo, categories []string) string {
	var filesList strings.Builder
	for i, f := range files {
		filesList.WriteString(fmt.Sprintf("\n### File %d: %s\n", i+1, f.Path))
		if f.Content != "" {
			filesList.WriteString(fmt.Sprintf("Content:\n%s\n", f.Content))
		} else {
			filesList.WriteString("(Binary file - no content preview)\n")
		}
	}

	var cats strings.Builder
	for _, c := range categories {
		cats.WriteString("- " + c + "\n")
	}
	if cats.Len() == 0 {
		cats.WriteString("(none yet)\n")
	}

	return fmt.Sprintf(`You are helping maintain an HTML catalog of documents grouped into categories.

Describe each of these new files so it can be added to the catalog:
%s

Existing categories:
%s
Prefer an existing category. Only propose a new category name when none fits.
Keep titles short and descriptions to one sentence.

Return ONLY a JSON array (no markdown, no code blocks), using the file path exactly as given:
[
  {"path": "./reports/q3.pdf", "title": "Q3 Report", "description": "Quarterly results for Q3.", "category": "Reports", "reasoning": "Brief explanation"}
]`, filesList.String(), cats.String())
}

// parseProposals extracts the proposals JSON array from Claude's response.
// Entries for paths that were not asked about are dropped.
func parseProposals(result string, files []ports.FileInfo) ([]ports.EntryProposal, error) {
	result = strings.TrimSpace(result)

	if matches := codeBlockRe.FindStringSubmatch(result); len(matches) > 1 {
		result = strings.TrimSpace(matches[1])
	}

	start := strings.Index(result, "[")
	end := strings.LastIndex(result, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no valid JSON array found in response")
	}
	jsonStr := result[start : end+1]

	var raw []proposalJSON
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse proposals JSON: %w (json: %s)", err, jsonStr)
	}

	asked := make(map[string]bool, len(files))
	for _, f := range files {
		asked[f.Path] = true
	}

	var proposals []ports.EntryProposal
	for _, r := range raw {
		if r.Path == "" || !asked[r.Path] {
			continue
		}
		proposals = append(proposals, ports.EntryProposal{
			Path:        r.Path,
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
			Category:    strings.TrimSpace(r.Category),
			Reasoning:   r.Reasoning,
		})
	}

	if len(proposals) == 0 {
		return nil, fmt.Errorf("no valid proposals found in response")
	}
	return proposals, nil
}

// IsAvailable checks if the claude CLI is installed and accessible
func (p *Proposer) IsAvailable() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}
