// Package samples holds the corpora the labs run against: the TechCorp
// policy documents used by the pipeline and chunking demos, and an AWS
// compliance document set matching the evaluation suite.
package samples

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed aws
var awsDocs embed.FS

// Policy is one TechCorp policy document.
type Policy struct {
	ID       string
	Title    string
	Category string
	Content  string
}

// TechCorpPolicies returns the five TechCorp policy documents.
func TechCorpPolicies() []Policy {
	return []Policy{
		{
			ID:       "policy_001",
			Title:    "Home Office Equipment Reimbursement",
			Category: "reimbursement",
			Content:  "Employees working from home may claim up to $500 per year for office equipment including desks, chairs, monitors, and computer accessories. Receipts must be submitted within 30 days of purchase. This policy applies to full-time remote workers only. The equipment must be used primarily for work purposes and should be ergonomic and suitable for a professional home office environment.",
		},
		{
			ID:       "policy_002",
			Title:    "Travel Expense Guidelines",
			Category: "travel",
			Content:  "Business travel expenses are reimbursable when pre-approved by your manager. Meals are covered up to $50 per day, hotel stays up to $200 per night. All receipts must be submitted within 14 days of return. International travel requires additional approval from the department head. Travel insurance is mandatory for all business trips exceeding 7 days.",
		},
		{
			ID:       "policy_003",
			Title:    "Remote Work Furniture Policy",
			Category: "reimbursement",
			Content:  "Remote employees may purchase ergonomic furniture for their home office setup. This includes standing desks, ergonomic chairs, and monitor arms. Maximum reimbursement is $300 per item with manager approval required. All furniture must meet ergonomic standards and be purchased from approved vendors. Receipts must be submitted within 45 days of purchase.",
		},
		{
			ID:       "policy_004",
			Title:    "Equipment and Supplies Reimbursement",
			Category: "reimbursement",
			Content:  "Work-related equipment and supplies purchased for home office use are eligible for reimbursement. This covers laptops, monitors, keyboards, mice, and other computer peripherals. Submit expense reports with receipts for approval. Equipment must be used for work purposes and should be compatible with company systems. Annual limit is $1000 per employee.",
		},
		{
			ID:       "policy_005",
			Title:    "Vacation and PTO Policy",
			Category: "benefits",
			Content:  "Full-time employees accrue 15 days of paid time off per year. Vacation requests must be submitted at least 2 weeks in advance. Unused PTO does not roll over to the next year. Emergency leave can be taken with manager approval. Sick leave is separate from vacation time and does not count against PTO balance.",
		},
	}
}

// HandbookDoc is one TechCorp employee handbook file, used by the lexical
// ranking demos.
type HandbookDoc struct {
	Name    string
	Content string
}

// TechCorpHandbook returns the employee handbook corpus.
func TechCorpHandbook() []HandbookDoc {
	return []HandbookDoc{
		{
			Name:    "remote_work_policy.md",
			Content: "TechCorp remote work policy: employees may work remotely up to 3 days per week with manager approval. Remote work requires a secure internet connection and company-approved equipment.",
		},
		{
			Name:    "health_benefits.md",
			Content: "TechCorp provides comprehensive health insurance including medical, dental, and vision coverage. Health insurance benefits begin on the first day of employment for all full-time employees.",
		},
		{
			Name:    "pet_policy.md",
			Content: "Employees can bring pets to the office on Fridays. Dogs must be leashed in common areas and cats must remain in carriers. The pet policy does not apply to meeting rooms.",
		},
		{
			Name:    "expense_policy.md",
			Content: "Expense reports must be submitted within 30 days with itemized receipts. Meals during business travel are covered up to $50 per day.",
		},
		{
			Name:    "office_equipment.md",
			Content: "Office equipment requests including desks, chairs, and monitors are handled by facilities. Standing desks require an ergonomic assessment.",
		},
	}
}

// HandbookTexts returns just the handbook contents, in corpus order.
func HandbookTexts() []string {
	docs := TechCorpHandbook()
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	return texts
}

// AWSDoc is one AWS compliance document.
type AWSDoc struct {
	Name    string
	Content string
}

// AWSComplianceDocs returns the embedded AWS compliance documents, sorted
// by file name.
func AWSComplianceDocs() ([]AWSDoc, error) {
	entries, err := fs.ReadDir(awsDocs, "aws")
	if err != nil {
		return nil, err
	}

	docs := make([]AWSDoc, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(awsDocs, "aws/"+e.Name())
		if err != nil {
			return nil, err
		}
		docs = append(docs, AWSDoc{Name: e.Name(), Content: string(data)})
	}
	return docs, nil
}

// WriteAWSDocs materializes the embedded AWS documents into dir so they can
// be processed like a user-supplied document folder.
func WriteAWSDocs(dir string) error {
	docs, err := AWSComplianceDocs()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, d := range docs {
		if err := os.WriteFile(filepath.Join(dir, d.Name), []byte(d.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
