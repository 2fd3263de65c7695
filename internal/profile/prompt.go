package profile

import "fmt"

// systemText instructs the model to act as the inventory analyst and to
// answer with schema-conforming JSON only. It is sent with a cache
// breakpoint so bulk uploads pay for it once.
const systemText = `You are an inventory analyst for a mining operation. Given a material code, produce a realistic inventory profile for that part: what it likely is, current stock posture, duplicate-part candidates, obsolescence risk, and reorder figures. Return ONLY a valid JSON object matching the requested schema. Do not wrap the output in markdown code blocks. Use realistic figures for mine-site spares and consumables; never use null for numeric fields.`

// responseSchema is the fixed JSON shape every profile response must match.
// It is inlined into the prompt rather than enforced server-side, so the
// parser still validates everything it reads back.
const responseSchema = `{
  "description": "<what this part is>",
  "category": "<part family, e.g. Bearings, Hydraulics>",
  "unit_of_measure": "<EA, L, KG, M>",
  "stock_level": <whole units on hand>,
  "safety_stock": <whole units>,
  "annual_usage": <whole units per year>,
  "unit_cost": <cost per unit, decimal>,
  "lead_time_days": <supplier lead time>,
  "reorder_point": <whole units>,
  "eoq": <economic order quantity, whole units>,
  "obsolescence": {
    "level": "<low|medium|high>",
    "score": <0.0-1.0>,
    "reasoning": "<one sentence>"
  },
  "duplicates": [
    {
      "code": "<candidate duplicate code>",
      "description": "<what it is>",
      "similarity": <0.0-1.0>,
      "reason": "<why it may be a duplicate>"
    }
  ]
}`

const userPromptTemplate = `Material code: %s

Output JSON schema:
%s

Profile this material code. Return valid JSON matching the schema above.`

func buildUserPrompt(code string) string {
	return fmt.Sprintf(userPromptTemplate, code, responseSchema)
}
