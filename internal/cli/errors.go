package cli

// Error codes reported in JSON error responses.
const (
	ErrCodeGeneric = "E001" // Generic/unknown error
	ErrCodeParse   = "E002" // DIMACS parse error
	ErrCodeConfig  = "E003" // Options file error
	ErrCodeStore   = "E004" // Run history database error
	ErrCodeProof   = "E005" // Proof output error
	ErrCodeAborted = "E006" // Run cancelled before finishing
)
