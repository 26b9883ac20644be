package session

// Apology is the fixed string the backend is instructed to return
// verbatim when it cannot determine an answer.
const Apology = "Sorry!, I do not know."

// instructions is the fixed wrapper prepended to every query. It is not
// configurable per call.
const instructions = `This is a table of data extracted from the ORKG that represents a comparison of several research papers.
The rows are properties of the papers, and the columns are the papers (contributions) themselves.

The questions will need you to look into the values, sometimes across multiple columns.
The cells could contain multiple values and not just a single value.

If there is a date in there you might need to parse it to find answers about the year or the month.

If you do not know the answer, reply as follows:
"` + Apology + `"

Return all output as a string.

Lets think step by step.
`

// buildPrompt renders the full backend prompt: the fixed instructions,
// the session's data context, and the caller's query.
func buildPrompt(data, query string) string {
	return instructions + `
Below is the data.
Data:
` + data + `
Below is the query.
Query:
` + query
}
