package domain

// DocumentType is the classified type of a submitted VPN-request document.
type DocumentType string

const (
	DocTypeNewRequest DocumentType = "new_request"
	DocTypeExtension  DocumentType = "extension"
	DocTypeUnknown    DocumentType = "unknown"
)

// VerdictStatus is the terminal status of a validation run.
type VerdictStatus string

const (
	StatusApproved VerdictStatus = "approved_for_processing"
	StatusRejected VerdictStatus = "rejected_with_reason"
	StatusError    VerdictStatus = "error"
)

// StepStatus tracks the lifecycle of a single pipeline step.
type StepStatus string

const (
	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StepName identifies a pipeline step in the run record.
type StepName string

const (
	StepExtraction         StepName = "text_extraction"
	StepClassification     StepName = "document_classification"
	StepFieldExtraction    StepName = "field_extraction"
	StepSignatureDetection StepName = "signature_detection"
	StepRuleEvaluation     StepName = "rule_evaluation"
	StepJudgeEvaluation    StepName = "judge_evaluation"
	StepFinalDecision      StepName = "final_decision"
)

// RunState is the pipeline state machine. RunDecided and RunFailed are terminal.
type RunState string

const (
	RunPending             RunState = "pending"
	RunExtracting          RunState = "extracting"
	RunClassifying         RunState = "classifying_and_scraping"
	RunDetectingSignatures RunState = "detecting_signatures"
	RunRuleChecking        RunState = "rule_checking"
	RunJudging             RunState = "judging"
	RunDecided             RunState = "decided"
	RunFailed              RunState = "failed"
)

// FileType represents the allowed file types for validation.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}
