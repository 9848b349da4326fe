// internal/service/scoring/prompts.go

package scoring

import (
	"fmt"
	"strings"

	"brandtrust/internal/domain/brand"
)

// maxPromptFindings bounds how many snippets go into one prompt so the
// request stays well under the model's input limit
const maxPromptFindings = 40

// sentimentPrompt asks the model to score customer sentiment from the
// pooled review and discussion text
func sentimentPrompt(brandName string, findings []brand.Finding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are evaluating customer sentiment for the brand %q.\n\n", brandName)
	b.WriteString("Below are customer reviews and discussion posts collected from shopping sites and social media.\n\n")

	writeFindings(&b, findings)

	b.WriteString(`
Score the overall customer sentiment from 0 to 10, where 10 is uniformly positive and 0 is uniformly negative. Start from the balance of positive and negative statements, then deduct for recurring problem themes: product quality complaints, shipping or delivery failures, refund disputes, and accusations of deceptive practices each warrant a deduction when they appear repeatedly rather than as isolated incidents.

Respond with only a JSON object in this exact format:
{"review_sentiment_score": <number>, "confidence_level": "<high|medium|low>", "key_factors": ["<factor>", "<factor>", "<factor>"]}
`)
	return b.String()
}

// socialPrompt asks the model to score the brand's social media presence.
// Negative chatter is weighted more than volume: an active but complained-
// about brand should score below a quiet one.
func socialPrompt(brandName string, reddit, twitter brand.SourceResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are evaluating the social media presence of the brand %q.\n\n", brandName)

	writeSocialSummary(&b, "Reddit", reddit)
	writeSocialSummary(&b, "Twitter", twitter)

	var findings []brand.Finding
	findings = append(findings, reddit.Findings...)
	findings = append(findings, twitter.Findings...)
	if len(findings) > 0 {
		b.WriteString("\nSample posts:\n\n")
		writeFindings(&b, findings)
	}

	b.WriteString(`
Score the brand's social media presence from 0 to 10. Consider mention volume, engagement, and audience size, but weigh the tone of the posts more heavily than the numbers: widespread complaints or scam accusations should pull the score down sharply even when the brand is highly visible. Absence of any presence is mediocre, not catastrophic.

Respond with only a JSON object in this exact format:
{"social_media_score": <number>, "confidence_level": "<high|medium|low>", "key_factors": ["<factor>", "<factor>", "<factor>"]}
`)
	return b.String()
}

func writeSocialSummary(b *strings.Builder, label string, r brand.SourceResult) {
	if r.Social == nil {
		fmt.Fprintf(b, "%s: no data (%s)\n", label, r.Error)
		return
	}
	fmt.Fprintf(b, "%s: %d mentions, %d total engagement", label, r.Social.Mentions, r.Social.Engagement)
	if r.Social.Followers > 0 {
		fmt.Fprintf(b, ", %d followers", r.Social.Followers)
	}
	b.WriteString("\n")
}

func writeFindings(b *strings.Builder, findings []brand.Finding) {
	if len(findings) > maxPromptFindings {
		findings = findings[:maxPromptFindings]
	}
	for i, f := range findings {
		text := f.Text
		if len(text) > 400 {
			text = text[:400]
		}
		fmt.Fprintf(b, "%d. [%s", i+1, f.Source)
		if f.Rating > 0 {
			fmt.Fprintf(b, ", rated %.1f/5", f.Rating)
		}
		fmt.Fprintf(b, "] %s\n", text)
	}
}
