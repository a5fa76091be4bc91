package handoff

import (
	"encoding/json"
	"strings"

	"github.com/nursehub/nursing-assistant/internal/domain/clinical"
)

const generateSystemPrompt = `You are a nurse preparing a handoff report for the incoming shift.
Your task is to generate a structured SBAR report based on patient data.

SBAR stands for Situation, Background, Assessment, and Recommendation.
It is a standardized communication framework used in healthcare to organize and deliver critical
patient information, especially during handoffs. It ensures that essential details are conveyed clearly,
reducing the risk of miscommunication and improving patient safety. Here is a detailed breakdown of each component:

Situation

- Patient identifiers (name, age, room number).
- Current vital signs (e.g., blood pressure, heart rate, oxygen levels).
- Any urgent issues or changes (e.g., "Patient is experiencing chest pain").

Background

- Primary diagnosis and reason for admission.
- Key medical history (e.g., chronic conditions, allergies).
- Recent treatments or interventions (e.g., medications given, procedures done).

Assessment

- Changes or trends in the patient's status (e.g., "Symptoms are improving").
- Interpretation of data (e.g., "Vital signs are stable but pain persists").
- Any concerns or uncertainties (e.g., "Not sure if nausea is medication-related").

Recommendation

- Monitoring instructions (e.g., "Check vitals every 4 hours").
- Alerts (e.g., "Patient is a fall risk").
- Follow-up actions (e.g., "Give pain medication at 8 PM").

ReportedBy

- Nurse Name
- License Number`

const regenerateInstruction = `A report for this patient already exists. Regenerate it against the latest data:

- Preserve the Background section unless the new nurse notes introduce new medical-history facts.
- Update the Situation, Assessment and Recommendation sections from the latest vitals, medical data and notes.
- Keep the ReportedBy section unchanged.

Previous report:
`

// ComposeGenerate builds the system and user prompts for a fresh report from
// the clinical snapshot. Facet order in the user prompt is fixed so that
// identical snapshots always produce identical prompts.
func ComposeGenerate(snap *clinical.Snapshot) (string, string) {
	return generateSystemPrompt, userPrompt(snap)
}

// ComposeRegenerate builds the prompts for regenerating an existing report.
// The prior report is embedded verbatim in the system prompt together with
// the rules for what may change.
func ComposeRegenerate(snap *clinical.Snapshot, priorReport string) (string, string) {
	var sb strings.Builder
	sb.WriteString(generateSystemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(regenerateInstruction)
	sb.WriteString(priorReport)
	return sb.String(), userPrompt(snap)
}

func userPrompt(snap *clinical.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("Generate a handoff report using the following: ")
	writeFacet(&sb, "Patient Data", snap.Patient)
	writeFacet(&sb, "Vital Signs", snap.Vitals)
	writeFacet(&sb, "Medical Data", snap.Events)
	writeFacet(&sb, "Nurse Notes", snap.Notes)
	writeFacet(&sb, "Nurse Data", snap.Nurse)
	return sb.String()
}

func writeFacet(sb *strings.Builder, label string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte("null")
	}
	sb.WriteString(label)
	sb.WriteString(" : ")
	sb.Write(data)
	sb.WriteString(", ")
}
