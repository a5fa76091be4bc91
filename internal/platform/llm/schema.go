package llm

import (
	"encoding/json"
	"strings"
)

// ReportDraft is the provider-native structured output, decoded from the
// model's JSON. Section pointers stay nil when the model omitted a section so
// validation can tell "missing" apart from "empty".
type ReportDraft struct {
	Situation      *SituationDraft      `json:"situation"`
	Background     *BackgroundDraft     `json:"background"`
	Assessment     *AssessmentDraft     `json:"assessment"`
	Recommendation *RecommendationDraft `json:"recommendation"`
	ReportedBy     *ReportedByDraft     `json:"reported_by"`
}

type SituationDraft struct {
	PatientName   string   `json:"patient_name"`
	MRN           string   `json:"mrn"`
	Age           int      `json:"age"`
	Gender        string   `json:"gender"`
	RoomNumber    string   `json:"room_number"`
	AdmissionDate string   `json:"admission_date"`
	Feedback      []string `json:"list_situations_feedback"`
}

type BackgroundDraft struct {
	Items []string `json:"list_backgrounds"`
}

type AssessmentDraft struct {
	Items []string `json:"list_assessments"`
}

type RecommendationDraft struct {
	Items []string `json:"list_recommendations"`
}

type ReportedByDraft struct {
	Nurse         string `json:"nurse"`
	LicenseNumber string `json:"license_number"`
}

// reportSchemaJSON is the JSON Schema handed to providers with native
// structured-output support. Field names match the decoded ReportDraft.
const reportSchemaJSON = `{
  "type": "object",
  "properties": {
    "situation": {
      "type": "object",
      "properties": {
        "patient_name": {"type": "string"},
        "mrn": {"type": "string"},
        "age": {"type": "integer"},
        "gender": {"type": "string"},
        "room_number": {"type": "string"},
        "admission_date": {"type": "string"},
        "list_situations_feedback": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["patient_name", "mrn", "age", "gender", "room_number", "admission_date", "list_situations_feedback"],
      "additionalProperties": false
    },
    "background": {
      "type": "object",
      "properties": {
        "list_backgrounds": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["list_backgrounds"],
      "additionalProperties": false
    },
    "assessment": {
      "type": "object",
      "properties": {
        "list_assessments": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["list_assessments"],
      "additionalProperties": false
    },
    "recommendation": {
      "type": "object",
      "properties": {
        "list_recommendations": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["list_recommendations"],
      "additionalProperties": false
    },
    "reported_by": {
      "type": "object",
      "properties": {
        "nurse": {"type": "string"},
        "license_number": {"type": "string"}
      },
      "required": ["nurse", "license_number"],
      "additionalProperties": false
    }
  },
  "required": ["situation", "background", "assessment", "recommendation", "reported_by"],
  "additionalProperties": false
}`

// schemaInstruction is appended to the system prompt for providers without a
// schema-aware response format. The output is still validated after parsing.
const schemaInstruction = "Respond with a single JSON object and nothing else. " +
	"The object must conform exactly to this JSON Schema:\n" + reportSchemaJSON

// decodeDraft parses provider output into a ReportDraft and validates it.
// Non-JSON or schema-violating output yields a *SchemaError; it is never
// silently coerced.
func decodeDraft(provider, content string) (*ReportDraft, error) {
	var draft ReportDraft
	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(&draft); err != nil {
		return nil, &SchemaError{Provider: provider, Reason: "invalid JSON: " + err.Error()}
	}
	if missing := draft.missingFields(); len(missing) > 0 {
		return nil, &SchemaError{
			Provider: provider,
			Reason:   "missing required fields: " + strings.Join(missing, ", "),
		}
	}
	return &draft, nil
}

// missingFields lists required fields the draft does not carry. List fields
// may legitimately be empty; sections and scalar fields may not. This is the
// only guard on providers without a schema-aware response format, so every
// required scalar is checked rather than defaulted.
func (d *ReportDraft) missingFields() []string {
	var missing []string
	if d.Situation == nil {
		missing = append(missing, "situation")
	} else {
		if d.Situation.PatientName == "" {
			missing = append(missing, "situation.patient_name")
		}
		if d.Situation.MRN == "" {
			missing = append(missing, "situation.mrn")
		}
		if d.Situation.Age <= 0 {
			missing = append(missing, "situation.age")
		}
		if d.Situation.Gender == "" {
			missing = append(missing, "situation.gender")
		}
		if d.Situation.RoomNumber == "" {
			missing = append(missing, "situation.room_number")
		}
		if d.Situation.AdmissionDate == "" {
			missing = append(missing, "situation.admission_date")
		}
	}
	if d.Background == nil {
		missing = append(missing, "background")
	}
	if d.Assessment == nil {
		missing = append(missing, "assessment")
	}
	if d.Recommendation == nil {
		missing = append(missing, "recommendation")
	}
	if d.ReportedBy == nil {
		missing = append(missing, "reported_by")
	} else {
		if d.ReportedBy.Nurse == "" {
			missing = append(missing, "reported_by.nurse")
		}
		if d.ReportedBy.LicenseNumber == "" {
			missing = append(missing, "reported_by.license_number")
		}
	}
	return missing
}
