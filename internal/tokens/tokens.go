// Package tokens estimates token usage for judges whose backend does not
// report it.
package tokens

import "math"

const charsPerToken = 4

// Estimate approximates the token count of text at ~4 bytes per token.
func Estimate(text string) int {
	return int(math.Ceil(float64(len(text)) / float64(charsPerToken)))
}

// EstimateExchange is the estimated cost of one prompt and its reply.
func EstimateExchange(prompt, reply string) int {
	return Estimate(prompt) + Estimate(reply)
}
