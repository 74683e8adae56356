package engine

// LLM prompt templates: data only, no logic.

// SentimentBatchPrompt classifies a batch of comments.
// Args: JSON array of {"id","text"} objects.
const SentimentBatchPrompt = `Classify the sentiment of each YouTube comment below as exactly one of: positive, negative, neutral.

Respond with a JSON array only, no markdown, no prose, no code fences:
[{"id": "<comment id>", "sentiment": "positive|negative|neutral"}]

Rules:
- Return one entry per input comment, with the id copied verbatim
- Judge the comment's own tone, not the topic of the video
- Sarcasm counts as the sentiment it actually expresses
- If unsure, use "neutral"

Comments:
%s`

// FactCheckPrompt asks for one strict verdict object.
// Args: current date, snippet text.
const FactCheckPrompt = `You are a careful fact-checker. Evaluate the claim in the text below.

Current date: %s

Respond with a single JSON object only, no markdown, no prose:
{
  "verdict": "True | False | Partially True | Misleading | Unverifiable | Opinion",
  "confidence": 0.0,
  "explanation": "1-3 plain sentences explaining the verdict.",
  "sources": ["Short reference or URL backing the verdict"]
}

Rules:
- verdict MUST be one of the six values above, spelled exactly
- confidence is a number between 0.0 and 1.0
- Use "Opinion" for subjective statements and "Unverifiable" when evidence is lacking
- sources may be an empty array; never invent URLs

Text:
"""
%s
"""`
