package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitscout/backend/internal/llm"
	"github.com/gitscout/backend/internal/storage/models"
)

// Fetcher supplies repository context. Every method is best-effort: ok=false
// degrades the prompt, it never fails the request.
type Fetcher interface {
	FetchReadme(ctx context.Context, author, name string, limit int) (string, bool)
	FetchDirectoryListing(ctx context.Context, author, name string) (string, bool)
	FetchFile(ctx context.Context, author, name, path string, limit int) (string, bool)
}

const (
	readmeQuickLimit = 2000
	manifestLimit    = 1500
)

// manifestCandidates is probed in order; the first hit wins.
var manifestCandidates = []string{
	"package.json",
	"Cargo.toml",
	"go.mod",
	"requirements.txt",
	"pom.xml",
}

// composeMessages builds the conversation for a summary request. Quick mode
// caps the README excerpt; deep mode lifts the cap and adds a shallow
// directory listing plus the first dependency manifest found.
func composeMessages(ctx context.Context, fetcher Fetcher, repo models.Repo, deep bool) []llm.ChatMessage {
	readmeLimit := readmeQuickLimit
	if deep {
		readmeLimit = 0
	}
	readme, _ := fetcher.FetchReadme(ctx, repo.Author, repo.Name, readmeLimit)

	var extra strings.Builder
	if deep {
		if tree, ok := fetcher.FetchDirectoryListing(ctx, repo.Author, repo.Name); ok {
			extra.WriteString("\n\nProject directory structure (partial):\n---\n")
			extra.WriteString(tree)
			extra.WriteString("\n---")
		}

		for _, candidate := range manifestCandidates {
			if content, ok := fetcher.FetchFile(ctx, repo.Author, repo.Name, candidate, manifestLimit); ok {
				fmt.Fprintf(&extra, "\n\nManifest %s (excerpt):\n---\n%s\n---", candidate, content)
				break
			}
		}
	}

	var readmeSection string
	if readme != "" {
		label := "excerpt"
		if deep {
			label = "full"
		}
		readmeSection = fmt.Sprintf("\n\nProject README (%s):\n---\n%s\n---", label, readme)
	}

	prompt := fmt.Sprintf(
		"Write an insightful summary of the following GitHub project:\n"+
			"Project: %s/%s\n"+
			"Description: %s\n"+
			"Language: %s%s%s\n\n"+
			"Cover these angles:\n"+
			"1. Core technical architecture\n"+
			"2. What pain point it solves\n"+
			"3. Who should use it and how to get started (three sentences max)\n"+
			"Use Markdown formatting.",
		repo.Author, repo.Name, repo.Description, repo.Language, readmeSection, extra.String(),
	)

	return []llm.ChatMessage{
		llm.SystemMessage("You are a seasoned software architect and technical evangelist, skilled at summarizing technical projects concisely."),
		llm.UserMessage(prompt),
	}
}
