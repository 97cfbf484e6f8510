package eval

// Case is one evaluation query. ExpectedTerms describe what a good answer
// mentions; MustHaveAll are the terms that must all appear in a single
// retrieved result for the case to pass.
type Case struct {
	Query         string
	ExpectedTerms []string
	MustHaveAll   []string
}

// Cases returns the AWS compliance evaluation suite.
func Cases() []Case {
	return []Case{
		{
			Query:         "What are the S3 encryption requirements?",
			ExpectedTerms: []string{"S3", "encryption", "AES-256", "KMS"},
			MustHaveAll:   []string{"S3", "encryption"},
		},
		{
			Query:         "What is policy AWS-POL-S3-001?",
			ExpectedTerms: []string{"AWS-POL-S3-001", "S3", "encryption"},
			MustHaveAll:   []string{"AWS-POL-S3-001"},
		},
		{
			Query:         "EC2 instance tagging requirements",
			ExpectedTerms: []string{"EC2", "tag", "Environment", "Owner"},
			MustHaveAll:   []string{"EC2", "tag"},
		},
		{
			Query:         "CloudTrail logging configuration",
			ExpectedTerms: []string{"CloudTrail", "logging", "audit"},
			MustHaveAll:   []string{"CloudTrail", "logging"},
		},
		{
			Query:         "VPC security group rules",
			ExpectedTerms: []string{"VPC", "security", "group", "rules"},
			MustHaveAll:   []string{"VPC", "security"},
		},
		{
			Query:         "IAM password policy minimum length",
			ExpectedTerms: []string{"IAM", "password", "minimum", "length", "14"},
			MustHaveAll:   []string{"password", "14"},
		},
		{
			Query:         "RDS encryption at rest requirements",
			ExpectedTerms: []string{"RDS", "encryption", "rest", "KMS"},
			MustHaveAll:   []string{"RDS", "encryption"},
		},
		{
			Query:         "Lambda function timeout limits",
			ExpectedTerms: []string{"Lambda", "timeout", "900", "seconds"},
			MustHaveAll:   []string{"Lambda", "timeout"},
		},
		{
			Query:         "EBS volume encryption policy",
			ExpectedTerms: []string{"EBS", "volume", "encryption", "required"},
			MustHaveAll:   []string{"EBS", "encryption"},
		},
		{
			Query:         "CloudWatch log retention period",
			ExpectedTerms: []string{"CloudWatch", "log", "retention", "days"},
			MustHaveAll:   []string{"CloudWatch", "retention"},
		},
		{
			Query:         "AWS-POL-EC2-002 compliance details",
			ExpectedTerms: []string{"AWS-POL-EC2-002", "EC2", "compliance"},
			MustHaveAll:   []string{"AWS-POL-EC2-002"},
		},
	}
}
