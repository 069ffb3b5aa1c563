package main

import (
	"fmt"
	"strings"
)

// claimRule maps a question pattern onto a declarative template. Rules are
// evaluated in order and the first match wins; several patterns can co-match
// (e.g. "who wrote" and "who "), so the order is load-bearing.
type claimRule struct {
	match    func(q string) bool
	template string
}

func prefixRule(prefix, template string) claimRule {
	return claimRule{
		match:    func(q string) bool { return strings.HasPrefix(q, prefix) },
		template: template,
	}
}

var claimRules = []claimRule{
	prefixRule("who wrote", "%s wrote the work."),
	prefixRule("who ", "%s is the person in question."),
	{
		match: func(q string) bool {
			return strings.Contains(q, "what year") || strings.HasPrefix(q, "when ")
		},
		template: "It happened in %s.",
	},
	prefixRule("where ", "It happened in %s."),
	{
		match: func(q string) bool {
			return strings.HasPrefix(q, "what is") || strings.HasPrefix(q, "what was")
		},
		template: "It is %s.",
	},
	prefixRule("which ", "It is %s."),
}

// Claimify turns a (question, span-answer) pair into a declarative sentence
// usable as an entailment hypothesis.
func Claimify(question, answer string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	a := strings.TrimSpace(answer)
	if a == "" {
		return "The answer is unknown."
	}
	for _, rule := range claimRules {
		if rule.match(q) {
			return fmt.Sprintf(rule.template, a)
		}
	}
	return fmt.Sprintf("Answer: %s", a)
}
