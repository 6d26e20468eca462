package domain

// Actor identifies who is composing a transaction and in which organization.
// It is passed explicitly to every collaborator call instead of being looked up ambiently.
type Actor struct {
	UserID string `json:"userID"`
	OrgID  string `json:"orgID"`
}

// Provenance records where a field's current value came from.
type Provenance string

const (
	ProvenanceNone    Provenance = ""
	ProvenanceUser    Provenance = "user"
	ProvenanceAI      Provenance = "ai"
	ProvenanceOCR     Provenance = "ocr"
	ProvenanceSimilar Provenance = "similar"
)

// Draft field names, shared by validation error keys, provenance and edit tracking.
const (
	FieldIntent          = "intent"
	FieldTitle           = "title"
	FieldAmount          = "amount"
	FieldDate            = "date"
	FieldCategory        = "category"
	FieldDescription     = "description"
	FieldNote            = "note"
	FieldDebitAccountID  = "debitAccountId"
	FieldCreditAccountID = "creditAccountId"
	FieldLineItems       = "lineItems"
)
