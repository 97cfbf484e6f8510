package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raglab/raglab/internal/chunk"
	"github.com/raglab/raglab/internal/config"
	"github.com/raglab/raglab/internal/vectorstore"
)

// handbookDocument is a multi-section policy document. Stored whole, it
// drowns any specific answer in unrelated sections.
const handbookDocument = `TechCorp Employee Handbook - Remote Work Policy

Section 1: Eligibility and Approval Process
Employees may work remotely up to 3 days per week with manager approval.
Remote work days must be scheduled in advance and approved by your direct supervisor.

Section 2: Equipment and Technology Requirements
Remote employees must have a secure and reliable internet connection with minimum speeds of 25 Mbps download and 5 Mbps upload.
All work must be performed on company-approved devices and software.
Personal devices are not permitted for work purposes.

Section 3: Workspace and Environment Standards
Remote work is not a substitute for childcare or eldercare responsibilities.
Employees must have a dedicated workspace free from distractions.
The workspace must be professional and suitable for video calls.

Section 4: Performance and Evaluation
Performance evaluations will be conducted quarterly.
Remote work performance will be assessed based on deliverables and communication.`

const remoteWorkDocument = `TechCorp Remote Work Policy

Employees may work remotely up to 3 days per week with manager approval.
Remote work days must be scheduled in advance and approved by your direct supervisor.
All remote work must comply with company security policies and use approved equipment.
Employees working remotely are expected to maintain regular communication with their team.
Performance expectations remain the same regardless of work location.

Remote work is not a substitute for childcare or eldercare responsibilities.
Employees must have a dedicated workspace free from distractions.
All company equipment must be returned if remote work arrangement is terminated.`

const reimbursementDocument = `TechCorp Equipment Reimbursement Policy

Section 1: Eligibility Requirements
Employees working from home may claim up to $500 per year for office equipment including desks, chairs, monitors, and computer accessories. This policy applies to full-time remote workers only. Part-time employees are not eligible for this benefit.

Section 2: Approval Process
All equipment purchases must be pre-approved by your direct manager. Submit a purchase request form at least 2 weeks before the intended purchase date. Include item description, estimated cost, and business justification. Manager approval is required before any purchase.

Section 3: Reimbursement Process
Receipts must be submitted within 30 days of purchase. Use the company expense reporting system to submit your claim. Include original receipts and manager approval email. Reimbursement will be processed within 2 weeks of submission.

Section 4: Equipment Standards
All equipment must meet company security standards. Computers must have approved antivirus software installed. Monitors must support minimum 1080p resolution. Chairs must be ergonomic and adjustable. Desks must provide adequate workspace for dual monitors.

Section 5: Return Policy
If employment ends within 12 months of purchase, equipment must be returned to the company. Equipment becomes employee property after 12 months of continuous employment. Returned equipment will be inspected for damage and normal wear.`

const securityPolicyDocument = `TechCorp Security Policy and Remote Work Guidelines

Employees working remotely must follow strict security protocols to protect company data and systems. All remote work must be conducted using company-approved devices and software, including laptops, monitors, and security software. Personal devices, including smartphones and tablets, are strictly prohibited for accessing company systems or storing confidential information.

The company provides VPN access to all remote employees, which must be used whenever accessing internal systems or databases. VPN connections must be established before accessing any company resources, and employees must ensure their internet connection is secure and private. Public Wi-Fi networks, including those in coffee shops, airports, and hotels, are not permitted for company work due to security risks.

All confidential documents must be stored in approved cloud storage systems with proper encryption and access controls. Local storage of sensitive information on personal computers or external drives is strictly forbidden. Employees must use strong passwords and enable two-factor authentication for all company accounts and systems.

Regular security training sessions are mandatory for all remote workers, covering topics such as phishing prevention, password management, and data handling procedures. Employees must complete these training modules within 30 days of starting remote work and annually thereafter. Failure to complete security training may result in suspension of remote work privileges.

Incident reporting procedures require immediate notification of any security breaches, suspicious activities, or potential data exposures to the IT security team. Employees must report incidents within 2 hours of discovery using the designated security hotline or email system. Delayed reporting may result in disciplinary action and potential legal consequences.`

const sectionedPolicyDocument = `TechCorp Remote Work Policy

Section 1: Eligibility and Approval
Employees may work remotely up to 3 days per week with manager approval.
Remote work days must be scheduled in advance and approved by your direct supervisor.
All remote work must comply with company security policies and use approved equipment.

Section 2: Equipment Requirements
Remote employees must have a secure and reliable internet connection with minimum speeds of 25 Mbps download and 5 Mbps upload.
All work must be performed on company-approved devices and software.
Employees must use VPN when accessing company systems.
Personal devices are not permitted for work purposes.

Section 3: Workspace Standards
Remote work is not a substitute for childcare or eldercare responsibilities.
Employees must have a dedicated workspace free from distractions.
The workspace must be professional and suitable for video calls.
Background noise should be minimized during meetings.

Section 4: Communication Requirements
Employees must be available during core business hours (9 AM - 5 PM local time).
Regular check-ins with managers are required.
Team meetings must be attended via video conference.
Email and instant messaging should be checked regularly.

Section 5: Security and Compliance
All company data must be handled according to security policies.
Confidential information must not be discussed in public spaces.
Documents must be stored in approved cloud systems only.
Regular security training must be completed.`

var chunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Document chunking labs",
	Long: `Labs demonstrating why and how documents are split before indexing:
the whole-document retrieval problem, basic recursive splitting, chunk
overlap, sentence-aware splitting, and a search quality comparison.`,
}

var chunkingProblemCmd = &cobra.Command{
	Use:   "problem",
	Short: "Show why unchunked documents hurt retrieval",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChunkingProblem(cmd.Context())
	},
}

var chunkingBasicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Split a document with the recursive splitter",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runChunkingBasic()
	},
}

var chunkingOverlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Compare chunking with and without overlap",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runChunkingOverlap()
	},
}

var chunkingSentenceCmd = &cobra.Command{
	Use:   "sentence",
	Short: "Compare character-based and sentence-aware chunking",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runChunkingSentence()
	},
}

var chunkingSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Compare search quality with and without chunking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChunkingSearch(cmd.Context())
	},
}

func init() {
	chunkingCmd.AddCommand(
		chunkingProblemCmd,
		chunkingBasicCmd,
		chunkingOverlapCmd,
		chunkingSentenceCmd,
		chunkingSearchCmd,
	)
	rootCmd.AddCommand(chunkingCmd)
}

func runChunkingProblem(ctx context.Context) error {
	cfg := config.Default()
	logger := newLogger()

	store, err := newStore(ctx, cfg, logger, "policies", false)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.Add(ctx, []vectorstore.Document{
		{ID: "large_document", Content: handbookDocument},
	})
	if err != nil {
		return err
	}

	query := "internet speed requirements"
	fmt.Printf("Stored the employee handbook as a single document (%d characters)\n\n", len(handbookDocument))
	fmt.Printf("Searching for: %q\n\n", query)

	results, err := store.Search(ctx, query, vectorstore.WithTopK(1))
	if err != nil {
		return err
	}

	fmt.Println("Problem: the search returns the entire document.")
	fmt.Printf("Result: %s...\n\n", preview(results[0].Content, 200))
	fmt.Println("The answer is two sentences in section 2, but the caller gets")
	fmt.Println("every section. Splitting the document into chunks lets search")
	fmt.Println("return just the relevant piece.")
	return nil
}

func runChunkingBasic() error {
	fmt.Println("Original document:")
	fmt.Printf("  Length: %d characters\n", len(remoteWorkDocument))
	fmt.Printf("  Content: %s...\n\n", preview(remoteWorkDocument, 100))

	splitter := chunk.NewRecursiveSplitter(200, 50)
	chunks := splitter.Split(remoteWorkDocument)

	fmt.Printf("Split into %d chunks (size 200, overlap 50):\n\n", len(chunks))
	for _, c := range chunks {
		fmt.Printf("Chunk %d (%d characters):\n%s\n\n", c.Index+1, len(c.Text), c.Text)
	}
	return nil
}

func runChunkingOverlap() error {
	fmt.Printf("Sample document: %d characters\n\n", len(reimbursementDocument))

	noOverlap := chunk.NewRecursiveSplitter(300, 0).Split(reimbursementDocument)
	fmt.Printf("Without overlap: %d chunks\n", len(noOverlap))
	for _, c := range noOverlap {
		fmt.Printf("  Chunk %d: %s...\n", c.Index+1, preview(c.Text, 80))
	}

	withOverlap := chunk.NewRecursiveSplitter(300, 50).Split(reimbursementDocument)
	fmt.Printf("\nWith overlap of 50: %d chunks\n", len(withOverlap))
	for _, c := range withOverlap {
		fmt.Printf("  Chunk %d: %s...\n", c.Index+1, preview(c.Text, 80))
	}

	fmt.Println("\nWithout overlap, a sentence ending one chunk and the rule it")
	fmt.Println("qualifies in the next chunk are separated for good. Overlap")
	fmt.Println("repeats the trailing context at the start of the next chunk, so")
	fmt.Println("a query matching the boundary still retrieves a complete answer.")
	return nil
}

func runChunkingSentence() error {
	fmt.Printf("Sample document: %d characters\n\n", len(securityPolicyDocument))

	fmt.Println("Character-based chunking (size 400, overlap 50):")
	reportBoundaries(chunk.NewRecursiveSplitter(400, 50).Split(securityPolicyDocument))

	fmt.Println("\nSentence-aware chunking (budget 400):")
	reportBoundaries(chunk.NewSentenceSplitter(400).Split(securityPolicyDocument))

	fmt.Println("\nSentence-aware chunks never cut a thought in half, which keeps")
	fmt.Println("each chunk self-contained for both search and generation.")
	return nil
}

// reportBoundaries prints each chunk's preview and whether it ends cleanly.
func reportBoundaries(chunks []chunk.Chunk) {
	for _, c := range chunks {
		marker := "breaks mid-sentence"
		if chunk.EndsAtSentenceBoundary(c.Text) {
			marker = "ends at sentence boundary"
		}
		fmt.Printf("  Chunk %d: %s...\n           %s\n", c.Index+1, preview(c.Text, 100), marker)
	}
}

func runChunkingSearch(ctx context.Context) error {
	cfg := config.Default()
	logger := newLogger()

	whole, err := newStore(ctx, cfg, logger, "no_chunking", false)
	if err != nil {
		return err
	}
	defer whole.Close()

	err = whole.Add(ctx, []vectorstore.Document{
		{ID: "full_document", Content: sectionedPolicyDocument},
	})
	if err != nil {
		return err
	}

	chunked, err := newStore(ctx, cfg, logger, "chunked", false)
	if err != nil {
		return err
	}
	defer chunked.Close()

	chunks := chunk.NewRecursiveSplitter(300, 50).Split(sectionedPolicyDocument)
	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = vectorstore.Document{
			ID:      fmt.Sprintf("chunk_%d", c.Index+1),
			Content: c.Text,
		}
	}
	if err := chunked.Add(ctx, docs); err != nil {
		return err
	}

	fmt.Printf("Policy document: %d characters\n", len(sectionedPolicyDocument))
	fmt.Printf("Stored whole in one collection and as %d chunks in another.\n", len(chunks))

	queries := []string{
		"What are the internet speed requirements?",
		"Can I use my personal laptop for work?",
		"What are the workspace requirements?",
		"How often do I need to check in with my manager?",
	}

	for _, query := range queries {
		fmt.Printf("\nQuery: %q\n", query)

		wholeResults, err := whole.Search(ctx, query, vectorstore.WithTopK(1))
		if err != nil {
			return err
		}
		fmt.Println("  Without chunking:")
		fmt.Printf("    Similarity: %.3f\n", wholeResults[0].Similarity)
		fmt.Printf("    Result: %s... (the entire document)\n", preview(wholeResults[0].Content, 100))

		chunkedResults, err := chunked.Search(ctx, query, vectorstore.WithTopK(2))
		if err != nil {
			return err
		}
		fmt.Println("  With chunking:")
		for i, r := range chunkedResults {
			fmt.Printf("    Chunk %d similarity: %.3f\n", i+1, r.Similarity)
			fmt.Printf("    Result: %s...\n", preview(r.Content, 100))
		}
	}
	return nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
