package models

// Pipeline statuses. A request error never produces a PipelineResult; it is
// reported through the HTTP error envelope instead.
const (
	StatusOK                 = "ok"
	StatusNeedsClarification = "needs_clarification"
)

// ExtractionResult is the stage 1 output: raw text recovered from the input
// plus the extraction confidence.
type ExtractionResult struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// Entities holds the three free-text fragments pulled out of the raw text.
// Each field is independently nullable; a nil field means the information was
// absent or ambiguous, which is a legitimate state, not an error.
type Entities struct {
	DatePhrase *string `json:"date_phrase"`
	TimePhrase *string `json:"time_phrase"`
	Department *string `json:"department"`
}

// EntityExtraction is the stage 2 output envelope.
type EntityExtraction struct {
	Entities   Entities `json:"entities"`
	Confidence float64  `json:"entities_confidence"`
}

// Normalized holds the absolute calendar date, 24-hour wall-clock time and
// timezone resolved from the entity phrases.
type Normalized struct {
	Date *string `json:"date"`
	Time *string `json:"time"`
	TZ   *string `json:"tz"`
}

// Normalization is the stage 3 output envelope.
type Normalization struct {
	Normalized Normalized `json:"normalized"`
	Confidence float64    `json:"normalization_confidence"`
}

// Appointment is the final structured record, only constructed once the
// entities are complete and the normalized date/time passed validation.
type Appointment struct {
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	TZ         string `json:"tz"`
}

// Booking is the stage 4 output envelope.
type Booking struct {
	Appointment Appointment `json:"appointment"`
	Status      string      `json:"status"`
}

// PipelineResult is the response envelope carrying the full stage trace.
// Step3 and step4 are nil when the pipeline halts early; that is the only
// partial state the pipeline produces.
type PipelineResult struct {
	Step1   *ExtractionResult `json:"step1"`
	Step2   *EntityExtraction `json:"step2"`
	Step3   *Normalization    `json:"step3"`
	Step4   *Booking          `json:"step4"`
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
}
