package samples

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTechCorpPolicies(t *testing.T) {
	policies := TechCorpPolicies()
	if len(policies) != 5 {
		t.Fatalf("got %d policies, want 5", len(policies))
	}

	seen := make(map[string]bool)
	for _, p := range policies {
		if p.ID == "" || p.Title == "" || p.Category == "" || p.Content == "" {
			t.Errorf("policy %q has empty fields", p.ID)
		}
		if seen[p.ID] {
			t.Errorf("duplicate policy ID %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestAWSComplianceDocs(t *testing.T) {
	docs, err := AWSComplianceDocs()
	if err != nil {
		t.Fatalf("AWSComplianceDocs: %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("no embedded documents")
	}

	// The corpus must be able to answer every evaluation query: each
	// required term combination appears in a single sentence somewhere.
	var joined strings.Builder
	for _, d := range docs {
		if !strings.HasSuffix(d.Name, ".md") {
			t.Errorf("unexpected file %q in corpus", d.Name)
		}
		joined.WriteString(strings.ToLower(d.Content))
		joined.WriteString("\n")
	}

	for _, term := range []string{
		"aws-pol-s3-001", "aws-pol-ec2-002", "aes-256", "kms",
		"cloudtrail", "cloudwatch", "retention", "vpc", "security",
		"password", "14", "rds", "lambda", "timeout", "900", "ebs",
	} {
		if !strings.Contains(joined.String(), term) {
			t.Errorf("corpus missing term %q", term)
		}
	}
}

func TestWriteAWSDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	if err := WriteAWSDocs(dir); err != nil {
		t.Fatalf("WriteAWSDocs: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	docs, _ := AWSComplianceDocs()
	if len(entries) != len(docs) {
		t.Errorf("wrote %d files, want %d", len(entries), len(docs))
	}
}
