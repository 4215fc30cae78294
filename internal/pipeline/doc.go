// Package pipeline provides the response filter chain of the client.
//
// Every wire response runs through an ordered list of response filters.
// Each filter may annotate the response, end the chain with a finished
// domain.Response, or pass to the next filter. The decode stage always runs
// last: it negotiates a produce processor from the response Content-Type,
// decodes the buffered body into the type declared for the status code and
// projects the declared headers.
//
// # Ordering
//
// Filters run in ascending Order(). DecodeStage.Order() is math.MaxInt, so
// any configured filter sees the raw wire response first.
//
// # Webhook Contract
//
// Webhook filters receive a summary of the wire response:
//
//	POST <webhook_url>
//	Content-Type: application/json
//
//	{
//	  "phase": "response",
//	  "invocation_id": "...",
//	  "operation": "...",
//	  "response": { "status_code": 200, "reason_phrase": "OK", "path": "...", "headers": { ... } }
//	}
//
// Response:
//
//	{
//	  "action": "allow" | "deny" | "mutate",
//	  "headers": { "X-Name": ["value"] },  // if mutating
//	  "deny_reason": "..."                  // if denying
//	}
package pipeline
