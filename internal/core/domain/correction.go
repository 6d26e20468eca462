package domain

// Correction records how the final values differ from what the AI originally suggested.
type Correction struct {
	Merchant                 string    `json:"merchant"`
	Description              string    `json:"description"`
	OriginalCategory         string    `json:"originalCategory"`
	CorrectedCategory        string    `json:"correctedCategory"`
	OriginalDebitAccountID   string    `json:"originalDebitAccountId,omitempty"`
	CorrectedDebitAccountID  string    `json:"correctedDebitAccountId,omitempty"`
	OriginalCreditAccountID  string    `json:"originalCreditAccountId,omitempty"`
	CorrectedCreditAccountID string    `json:"correctedCreditAccountId,omitempty"`
	UserDescription          string    `json:"userDescription,omitempty"`
	Direction                Direction `json:"transactionType"`
	IsBusiness               bool      `json:"isBusiness"`
	Confidence               *float64  `json:"confidence,omitempty"`
}
