package prompt

import (
	"spendlens/internal/domain"
	"spendlens/internal/port"
)

// ResponseMIMEType is the output format requested from the inference service.
const ResponseMIMEType = "application/json"

// dataSeparator joins the instruction and the document text in a text request.
const dataSeparator = "\n\nData:\n"

const instruction = `Analyze this financial statement. Extract all transaction data and provide deep strategic insights.

CRITICAL RULES:
- The "categoryDistribution" values must be valid percentages (0-100) representing the share of total spend for that category. They MUST sum to 100.
- "spendOverTime" must be in chronological order, oldest first.
- All amounts, percentages and "potentialSavings" values are plain non-negative numbers, never strings, without currency symbols.
- "impact" must be exactly one of "High", "Medium" or "Low".

PRIORITIZATION:
- Rate "impact" by return on effort, in proportion to the spend it touches. A change to a large recurring cost outranks a small one-off saving.
- Suggestions must target the largest spend concentrations first (top categories and top vendors).
- Insights must surface recurring charges, duplicate or overlapping subscriptions, and anomalous spikes or one-off payments.
- Estimate "potentialSavings" for every suggestion. Suggestions with no measurable saving use 0 and are marked "Low".

Return ONLY a JSON object, with no markdown and no explanation, in exactly this shape:
{
  "summary": { "totalSpend": number, "totalBudget": number, "burnRate": string, "topCategory": string },
  "charts": {
    "monthlySpend": [{ "month": string, "amount": number }],
    "categoryDistribution": [{ "category": string, "percentage": number }],
    "vendorSpend": [{ "vendor": string, "amount": number }],
    "spendOverTime": [{ "date": string, "amount": number }]
  },
  "insights": [string],
  "suggestions": [{ "title": string, "description": string, "impact": "High" | "Medium" | "Low", "potentialSavings": number }]
}`

// Instruction returns the fixed analysis instruction sent with every request.
func Instruction() string {
	return instruction
}

// Assemble builds the ordered request parts for a payload. Binary documents
// are attached ahead of the instruction; text is appended after it.
func Assemble(payload domain.Payload) []port.Part {
	switch p := payload.(type) {
	case domain.BinaryPayload:
		return []port.Part{
			{Kind: port.PartInline, Data: p.Data, MimeType: p.MimeType},
			{Kind: port.PartText, Text: instruction},
		}
	case domain.TextPayload:
		return []port.Part{
			{Kind: port.PartText, Text: instruction + dataSeparator + p.Content},
		}
	default:
		return nil
	}
}

// Request builds the full inference request for payload, choosing the
// compute budget by payload kind.
func Request(payload domain.Payload, textBudget, binaryBudget int) port.InferenceRequest {
	budget := textBudget
	if payload != nil && payload.Kind() == domain.PayloadBinary {
		budget = binaryBudget
	}
	return port.InferenceRequest{
		Parts:            Assemble(payload),
		ResponseMIMEType: ResponseMIMEType,
		ThinkingBudget:   budget,
	}
}
