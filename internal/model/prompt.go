// internal/model/prompt.go
package model

import "strings"

// promptTemplate is the Alpaca-style template the adapter was fine-tuned on.
// The few-shot example and the "### Response:" terminator are part of the
// trained format; changing them degrades generation quality.
const promptTemplate = `Below is an instruction that describes a task, paired with an input that provides further context. Write a response that appropriately completes the request.

### Instruction:
Convert the following question to a SQL query for a SQLite database. Only output the SQL query, nothing else.

Example:
Question: How many products are there?
SQL: SELECT COUNT(*) FROM products

Question: {question}

### Input:
Database schema:
{context}

### Response:
`

// BuildPrompt fills the template with the user question and schema text.
func BuildPrompt(question, schemaText string) string {
	prompt := strings.Replace(promptTemplate, "{question}", question, 1)
	return strings.Replace(prompt, "{context}", schemaText, 1)
}
