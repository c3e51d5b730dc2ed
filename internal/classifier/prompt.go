package classifier

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// buildPrompt embeds the description and the taxonomy in the instruction sent to the remote service.
func buildPrompt(taxonomy domain.Taxonomy, text string) string {
	var b strings.Builder
	b.WriteString("You are an assistant that classifies IT support tickets. ")
	b.WriteString("Given the following ticket description, return a JSON object with keys: ")
	b.WriteString("'category', 'priority', and 'confidence'. ")
	fmt.Fprintf(&b, "'category' must be one of: %s. ", strings.Join(taxonomy.Categories(), ", "))
	fmt.Fprintf(&b, "'priority' must be one of: %s. ", strings.Join(taxonomy.Priorities(), ", "))
	b.WriteString("'confidence' must be a float between 0 and 1 representing your confidence. ")
	b.WriteString("Respond ONLY with valid JSON and nothing else.\n\n")
	b.WriteString("Ticket description:\n")
	b.WriteString(text)
	b.WriteString("\n")
	return b.String()
}
