package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jurex/internal/domain/assembly"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
)

// noContextAnswer is returned verbatim when retrieval produced nothing;
// the backend is not called in that case.
const noContextAnswer = "I couldn't find relevant information in the legal database for your query. " +
	"Please try rephrasing your question or ensure the documents are uploaded."

const synthesisSystem = "You are a legal assistant helping common people understand Indian law."

// synthesisInstructions pins the answer to the retrieved context only.
const synthesisInstructions = `You have retrieved relevant information from:
1. Statutory documents (Constitution, IPC, IT Act)
2. Court judgments and precedents

CRITICAL INSTRUCTIONS:
1. ONLY use information from the retrieved context below
2. DO NOT use your own knowledge or training data
3. If the context doesn't contain the answer, clearly state: "The provided documents don't contain information about this specific query."
4. For each answer, cite the exact source from the context

How to answer:
1. Analyze the user's question
2. Look for the answer ONLY in the retrieved context
3. Structure your response clearly:
   - Start with the statutory provision (if available in context)
   - Then explain court interpretations (if available in context)
4. Use simple language for common people
5. Cite sources clearly:
   - For statutes: (IPC Section 420), (Constitution Article 21)
   - For cases: (Case Name, Section Type)
6. If context doesn't answer the question, say so clearly and stop
7. Do NOT make assumptions or provide information not in the context`

// buildSynthesisPrompt formats the assembled context grouped by corpus and
// appends the user question.
func buildSynthesisPrompt(ctx assembly.Context, query string) string {
	var sb strings.Builder
	sb.WriteString(synthesisInstructions)
	sb.WriteString("\n\nRetrieved Context:\n")

	if statutory := ctx.ByCorpus(corpus.LegalDocs); len(statutory) > 0 {
		sb.WriteString("\n## Statutory Provisions (Constitution, IPC, IT Act):\n")
		for i, p := range statutory {
			fmt.Fprintf(&sb, "%d. [%s]\n%s\n\n", i+1, titleOrUntitled(p.Title()), p.Chunk())
		}
	}

	if cases := ctx.ByCorpus(corpus.Cases); len(cases) > 0 {
		sb.WriteString("\n## Court Judgments & Precedents:\n")
		for i, p := range cases {
			sectionInfo := ""
			if p.Section() != "" {
				sectionInfo = fmt.Sprintf(" (%s)", p.Section())
			}
			fmt.Fprintf(&sb, "%d. [%s]%s\n%s\n\n", i+1, titleOrUntitled(p.Title()), sectionInfo, p.Chunk())
		}
	}

	sb.WriteString("\nUser Question:\n")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer (ONLY from context, with citations):")

	return sb.String()
}

func titleOrUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}
